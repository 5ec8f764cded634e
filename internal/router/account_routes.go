package router

import "github.com/labstack/echo/v4"

// registerAccounts mounts /users and /vendors.  Vendor signup and login
// take a user token; the rest of /vendors takes a vendor token.
func registerAccounts(api *echo.Group, g guards, d Deps) {
	u := api.Group("/users")
	u.GET("", d.Users.List)
	u.GET("/:id", d.Users.Get)
	u.POST("/signup", d.Users.Signup)
	u.POST("/login", d.Users.Login)
	u.POST("/refresh", d.Users.Refresh)
	u.POST("/logout", d.Users.Logout, g.user)
	u.PUT("/:id", d.Users.Update, g.user)
	u.PUT("/profilePic/:id", d.Users.UpdateProfilePic, g.user)
	u.POST("/:id/deactivate", d.Users.Deactivate, g.user)
	u.POST("/:id/reactivate", d.Users.Reactivate, g.user)
	u.DELETE("/:id", d.Users.Delete, g.user)

	v := api.Group("/vendors")
	v.GET("", d.Vendors.List)
	v.GET("/:id", d.Vendors.Get)
	v.POST("/signup", d.Vendors.Signup, g.user)
	v.POST("/login", d.Vendors.Login, g.user)
	v.PUT("/:id", d.Vendors.Update, g.vendor)
	v.PUT("/:id/deactivate", d.Vendors.Deactivate, g.vendor)
	v.PUT("/:id/reactivate", d.Vendors.Reactivate, g.user)
	v.DELETE("/:id", d.Vendors.Delete, g.vendor)
}
