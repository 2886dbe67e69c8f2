package main

import "notesnexus-backend/internal/app"

func main() {
	app.Run()
}
