package main

import "github.com/OpenTraceLab/OpenTraceNRF52/cmd/nrf52/cmd"

func main() {
	cmd.Execute()
}
