package main

import "carbonreport/cmd"

func main() {
	cmd.Execute()
}
