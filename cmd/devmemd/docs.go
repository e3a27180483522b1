package main

// General API documentation for swaggo. The generated document lives in
// internal/httpapi/docs and is served under /swagger/ with -tags=swagger.
//
// @title           devmem API
// @version         1.0
// @description     HTTP API for device memory status and probes.
//
// @contact.name   devmem maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
