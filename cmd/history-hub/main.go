package main

import "github.com/AlexNguyenz/history-hub/cmd/history-hub/commands"

func main() {
	commands.Execute()
}
