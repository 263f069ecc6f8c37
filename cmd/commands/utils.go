package commands

import (
	"fmt"
	"os"

	"waypoint/pkg/logger"
)

func ExitOnError(err error) {
	logger.Error("waypoint error", "err", err.Error())
	os.Exit(1)
}

func HandleHelp(_ []string) {
	fmt.Print(`waypoint captures geotagged photo and voice notes.

usage:
  waypoint run <config path>              start the http server
  waypoint purge <config path> <user id>  delete every waypoint of a user with its media
  waypoint version                        print the version
  waypoint help                           show this message
`) //nolint
}
