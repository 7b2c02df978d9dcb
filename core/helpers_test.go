package core

import (
	"io/ioutil"
	"log"
)

func nopLogger() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}
