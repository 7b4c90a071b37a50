/*
Copyright © 2017 the ALFRESCO authors.
This file is part of ALFRESCO.

ALFRESCO is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ALFRESCO is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ALFRESCO.  If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rarutter/alfresco"
	"github.com/rarutter/alfresco/alfrescoutil"
)

// Exit codes distinguish the failure classes for run harnesses.
const (
	exitOK = iota
	exitConfig
	exitIO
	exitInternal
)

func main() {
	cfg := alfrescoutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var cfgErr *alfresco.ConfigError
		var ioErr *alfresco.IOError
		switch {
		case errors.As(err, &cfgErr):
			os.Exit(exitConfig)
		case errors.As(err, &ioErr):
			os.Exit(exitIO)
		default:
			os.Exit(exitInternal)
		}
	}
	os.Exit(exitOK)
}
