// Command compare-cli runs the compare engine directly against two .docx
// files on disk, without going through the HTTP surface — for scripted or
// offline use where spinning up the server is unwarranted.
package main

import "github.com/vortex/supercompare/cmd/compare-cli/cmd"

func main() {
	cmd.Execute()
}
