/*
This is an example of application that will use the
engine package to render a small scene
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/vireo3d/vireo/engine/config"
	"github.com/vireo3d/vireo/testbed"
)

func main() {
	cfg, err := config.Load("vireo.toml")
	if err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		os.Exit(1)
	}()

	if err := testbed.Run(cfg); err != nil {
		panic(err)
	}
}
