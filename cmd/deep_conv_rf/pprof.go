package main

import "runtime/pprof"
import "os"
import "os/signal"
import "syscall"

// profile collects a cpu profile into default.pgo until SIGINT or SIGTERM
func profile() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	f, err := os.Create("default.pgo")
	if err != nil {
		panic(err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		panic(err.Error())
	}
	go func() {
		<-sigChan
		pprof.StopCPUProfile()
		f.Close()

		os.Exit(130)
	}()
}
