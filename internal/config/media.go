package config

// MediaConfig selects and configures the object store holding profile and
// listing pictures.
type MediaConfig struct {
	Driver  string // "local" or "cloudinary"
	Dir     string // root directory for the local driver
	BaseURL string // public URL prefix for the local driver

	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// LoadMediaConfig reads MEDIA_* and CLOUDINARY_* variables.  The local driver
// is the default so development needs no external account.
func LoadMediaConfig() MediaConfig {
	return MediaConfig{
		Driver:    envStr("MEDIA_DRIVER", "local"),
		Dir:       envStr("MEDIA_DIR", "./media"),
		BaseURL:   envStr("MEDIA_BASE_URL", "/media"),
		CloudName: envStr("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:    envStr("CLOUDINARY_API_KEY", ""),
		APISecret: envStr("CLOUDINARY_API_SECRET", ""),
		Folder:    envStr("CLOUDINARY_FOLDER", ""),
	}
}
