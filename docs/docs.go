// Package docs provides OpenAPI documentation for the users API
//
// The documentation is served via Swagger UI at /swagger/index.html when
// server.swagger is enabled.
//
// @title           Users API
// @version         1.0.0
// @description     CRUD API over a single users resource.
// @description
// @description     ## Error Handling
// @description
// @description     Validation failures return `{"errorMessage": "..."}`, unknown ids return
// @description     `{"message": "..."}` and storage failures return `{"error": "..."}`.
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @tag.name System
// @tag.description Health checks and metrics
//
// @tag.name Users
// @tag.description User records
package docs
