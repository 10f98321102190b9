package main

import "virtualevents/cmd/server/cmd"

// @title Virtual Events API
// @version 1.0
// @description Virtual events backend: accounts, events, registrations and profiles.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cmd.Execute()
}
