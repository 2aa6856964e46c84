package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskito/core/cmd/taskito/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskito",
		Short: "Taskito task and notes organizer",
		Long:  `Taskito is a local-first task and notes organizer with reminders and an optional sync backend. Data lives on disk first; a remote account keeps devices in sync when the network allows.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewAgentCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewProjectsCommand())
	rootCmd.AddCommand(commands.NewProfileCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSessionsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
