package main

import "sourcing-negotiation-api/app"

func main() {
	app.Run()
}
