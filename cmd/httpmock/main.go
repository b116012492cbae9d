// httpmock CLI - serves declarative HTTP mocks from setup files
package main

import "github.com/getmockd/httpmock/pkg/cli"

func main() {
	cli.Execute()
}
