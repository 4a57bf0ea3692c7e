// Command storefront runs the storefront gateway and CLI.
//
// @title        Storefront Gateway API
// @version      1.0
// @description  Local gateway over the spare-parts storefront backend.
// @BasePath     /
package main

import "github.com/partsdesk/storefront/internal/cmd"

func main() {
	cmd.Execute()
}
