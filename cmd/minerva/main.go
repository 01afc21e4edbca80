package main

import "github.com/blackwell-systems/minerva/internal/app"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app.SetVersion(version)
	app.Execute()
}
