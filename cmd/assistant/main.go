// Package main is the entry point for the Estate Assistant Service.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kova-io/estate-x/cmd/assistant/app"
)

func main() {
	app.NewApp().Run()
}
