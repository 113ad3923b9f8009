package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/system"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show the task table",
	Long: `List every task and timer with its period, priority and stack budget
as the loaded configuration sets them. Higher priority runs first.`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runTasks),
}

func runTasks(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Println(tui.RenderTable(taskColumns, taskRows(cfg)))
	fmt.Printf("\nTick %s, max %d tasks, timer stack %d words\n",
		cfg.Kernel.Tick, cfg.Kernel.MaxTasks, cfg.Kernel.TimerStackWords)
	return nil
}

var taskColumns = []tui.Column{
	{Title: "Task", Width: 9},
	{Title: "Period", Width: 8},
	{Title: "Priority", Width: 8},
	{Title: "Stack", Width: 6},
}

func taskRows(cfg config.Config) []tui.Row {
	t := cfg.Tasks
	row := func(name string, tc config.TaskConfig) tui.Row {
		return tui.Row{name, tc.Period.String(), fmt.Sprintf("%d", tc.Priority), fmt.Sprintf("%d", tc.StackWords)}
	}
	buzzer := row(system.TaskBuzzer, t.Buzzer)
	buzzer[1] = "event"
	return []tui.Row{
		row(system.TaskInput, t.Input),
		row(system.TaskRender, t.Render),
		row(system.TaskSnek, t.Snek),
		row(system.TaskMonitor, t.Monitor),
		buzzer,
		{system.TimerChrono, t.Chrono.String(), "timer", fmt.Sprintf("%d", cfg.Kernel.TimerStackWords)},
	}
}
