
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kmcsr/go-jsbridge/native"
	"github.com/kmcsr/go-jsbridge/native/sim"
)

var (
	FieldsNumWrong = errors.New("Command fields length wrong")
)

type Command interface{
	Execute(fields ...string)(resn []any, err error)
}

type (
	EchoCmd struct{}

	ShakeCmd struct{ p *sim.Platform }
	ItemsCmd struct{ p *sim.Platform }
	SelectCmd struct{ p *sim.Platform }
	PlayersCmd struct{ p *sim.Platform }
	FireCmd struct{ p *sim.Platform }
)

func initCommands(p *sim.Platform)(cmds map[string]Command){
	cmds = make(map[string]Command)
	cmds["echo"] = EchoCmd{}

	cmds["shake"] = ShakeCmd{p}
	cmds["items"] = ItemsCmd{p}
	cmds["select"] = SelectCmd{p}
	cmds["players"] = PlayersCmd{p}
	cmds["fire"] = FireCmd{p}
	return
}

func (EchoCmd)Execute(fields ...string)(resn []any, err error){
	resn = make([]any, len(fields))
	for i, r := range fields {
		resn[i] = r
	}
	return
}

func (c ShakeCmd)Execute(fields ...string)(resn []any, err error){
	if len(fields) != 3 {
		return nil, FieldsNumWrong
	}
	var v [3]float64
	for i, f := range fields {
		if v[i], err = strconv.ParseFloat(f, 64); err != nil {
			return
		}
	}
	ok := c.p.Motion().Push(native.Acceleration{X: v[0], Y: v[1], Z: v[2]})
	resn = append(resn, ok)
	return
}

func (c ItemsCmd)Execute(fields ...string)(resn []any, err error){
	if len(fields) != 0 {
		return nil, FieldsNumWrong
	}
	for _, m := range c.p.MenuItems() {
		resn = append(resn, fmt.Sprintf("%s:%s:%v", m.Id(), m.Title(), m.Enabled()))
	}
	return
}

func (c SelectCmd)Execute(fields ...string)(resn []any, err error){
	if len(fields) != 1 {
		return nil, FieldsNumWrong
	}
	id, err := uuid.Parse(fields[0])
	if err != nil {
		return
	}
	m := c.p.MenuItem(id)
	if m == nil {
		return nil, fmt.Errorf("MenuItem(%s) not exists", id)
	}
	resn = append(resn, m.Select())
	return
}

func (c PlayersCmd)Execute(fields ...string)(resn []any, err error){
	if len(fields) != 0 {
		return nil, FieldsNumWrong
	}
	for _, p := range c.p.Players() {
		resn = append(resn, fmt.Sprintf("%s:%s:%v", p.Id(), p.InputURL(), p.IsPlaying()))
	}
	return
}

func (c FireCmd)Execute(fields ...string)(resn []any, err error){
	if len(fields) < 2 {
		return nil, FieldsNumWrong
	}
	id, err := uuid.Parse(fields[0])
	if err != nil {
		return
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return
	}
	p := c.p.Player(id)
	if p == nil {
		return nil, fmt.Errorf("Player(%s) not exists", id)
	}
	p.Fire(code, strings.Join(fields[2:], " "))
	return
}
