package docs

// @title           Driver & Location Service API
// @version         1.0
// @description     Driver service handles driver registration, online/offline status, location tracking, and ride lifecycle management (start, complete). Supports real-time location updates and WebSocket notifications.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
