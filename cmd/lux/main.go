package main

import (
	"os"

	"github.com/sjc5/lux/internal/util"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		util.Log.Errorf("lux: %v", err)
		os.Exit(1)
	}
}
