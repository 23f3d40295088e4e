
package main

import (
	"fmt"
	"strings"
)

type TextCommander struct{
	commands map[string]Command
}

func (c TextCommander)Execute(cmd string, fields ...string)(res string, err error){
	cmd = strings.ToLower(cmd)
	if cmd == "help" {
		return cliCommandsUsage, nil
	}
	e, ok := c.commands[cmd]
	if !ok {
		return "", fmt.Errorf("No command called '%s'", cmd)
	}
	resn, err := e.Execute(fields...)
	if err != nil {
		return fmt.Sprintln("error", err), nil
	}
	return fmt.Sprintln(resn...), nil
}
