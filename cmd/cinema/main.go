package main

import "github.com/qs-lzh/cinema-booking/cmd/cinema/commands"

func main() {
	commands.Execute()
}
