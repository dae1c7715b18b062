// wslctl is a small command-line tool that drives WSL through its user
// session service. It exists mostly as a living example of the library.
package main

import (
	"os"

	"github.com/0xrawsec/golang-utils/log"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
