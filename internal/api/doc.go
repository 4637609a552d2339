// Package api provides the cronhook REST API.
//
//	@title			Cronhook API
//	@version		1.0
//	@description	HTTP cronjob scheduling and execution API
//	@BasePath		/api/v1
package api
