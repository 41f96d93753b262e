package main

import "github.com/MeKo-Tech/gomr/cmd/gomr/cmd"

func main() {
	cmd.Execute()
}
