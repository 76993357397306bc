package main

import "github.com/parisxmas/OxiDB/qrform/cmd"

func main() {
	cmd.Execute()
}
