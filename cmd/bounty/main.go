package main

import "github.com/zhang-san-er/task-tools/cmd/bounty/root"

func main() {
	root.Execute()
}
