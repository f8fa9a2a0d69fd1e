package main

import "github.com/callisatech-creator/QuestFocus/cmd/qf/root"

func main() {
	root.Execute()
}
