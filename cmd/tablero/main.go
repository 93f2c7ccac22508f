// tablero serves interactive tabular dashboards.
package main

import (
	"os"

	"github.com/lcap17/proyect-viernes/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
