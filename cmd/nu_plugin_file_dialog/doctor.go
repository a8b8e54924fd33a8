package main

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// DoctorCmd reports which dialog backends can work on this machine.
type DoctorCmd struct{}

type backendStatus struct {
	Name   string
	Usable bool
	Detail string
}

func (d *DoctorCmd) Run(cli *CLI) error {
	fmt.Println(renderDoctorReport(checkBackends()))
	return nil
}

func checkBackends() []backendStatus {
	var statuses []backendStatus

	if runtime.GOOS == "linux" {
		if path, err := exec.LookPath("zenity"); err == nil {
			statuses = append(statuses, backendStatus{"zenity", true, path})
		} else {
			statuses = append(statuses, backendStatus{"zenity", false, "zenity binary not found in PATH"})
		}
		statuses = append(statuses, backendStatus{"native", false, "uses zenity on linux"})
	} else {
		statuses = append(statuses, backendStatus{"zenity", true, "built-in on " + runtime.GOOS})
		statuses = append(statuses, backendStatus{"native", true, "platform file chooser"})
	}
	return statuses
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	nameStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

func renderDoctorReport(statuses []backendStatus) string {
	out := nameStyle.Render("dialog backends") + "\n"
	for _, s := range statuses {
		mark := okStyle.Render("ok")
		if !s.Usable {
			mark = badStyle.Render("unavailable")
		}
		out += fmt.Sprintf("  %-8s %s  %s\n", s.Name, mark, dimStyle.Render(s.Detail))
	}
	return out
}
