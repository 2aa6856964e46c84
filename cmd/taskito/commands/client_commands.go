package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/taskito/core/internal/adapters/connectivity"
	"github.com/taskito/core/internal/adapters/localstore"
	"github.com/taskito/core/internal/adapters/notify"
	"github.com/taskito/core/internal/adapters/remote"
	"github.com/taskito/core/internal/application/services"
	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/config"
	"github.com/taskito/core/internal/infrastructure/logger"
	"github.com/taskito/core/internal/ports"
)

// clientApp bundles the organizer services for one-shot CLI invocations.
// Each invocation works against the on-disk snapshot; remote pushes
// follow the usual skip policy when no session or network is available.
type clientApp struct {
	logger   *logger.Logger
	state    *services.State
	tasks    *services.TaskService
	projects *services.ProjectService
	profile  *services.ProfileService
}

func newClientApp() *clientApp {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	store, err := localstore.New(afero.NewOsFs(), cfg.Agent.DataDir, appLogger.WithComponent("localstore"))
	if err != nil {
		appLogger.Fatal("Failed to open local store", "error", err, "dir", cfg.Agent.DataDir)
	}

	state := services.NewState(store)
	client := remote.NewClient(cfg.Agent.BackendURL, cfg.Agent.ProbeTimeout, appLogger.WithComponent("remote"))
	monitor := connectivity.NewMonitor(cfg.Agent.BackendURL, cfg.Agent.ProbeInterval, cfg.Agent.ProbeTimeout, appLogger.WithComponent("connectivity"))
	notifier := notify.NewConsole(appLogger.WithComponent("notify"))

	return &clientApp{
		logger:   appLogger,
		state:    state,
		tasks:    services.NewTaskService(state, client, monitor, notifier, appLogger.WithComponent("tasks")),
		projects: services.NewProjectService(state, client, monitor, appLogger.WithComponent("projects")),
		profile:  services.NewProfileService(state, client, monitor, appLogger.WithComponent("profile")),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewTasksCommand creates the tasks command group
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage tasks and notes",
	}

	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task or note",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()

			date, _ := cmd.Flags().GetString("date")
			timeOfDay, _ := cmd.Flags().GetString("time")
			description, _ := cmd.Flags().GetString("desc")
			projectID, _ := cmd.Flags().GetString("project")
			tags, _ := cmd.Flags().GetStringSlice("tag")
			isNote, _ := cmd.Flags().GetBool("note")
			remind, _ := cmd.Flags().GetInt("remind")

			itemType := entities.ItemTypeTask
			if isNote {
				itemType = entities.ItemTypeNote
			}

			req := ports.CreateTaskRequest{
				Title:       args[0],
				Description: optional(description),
				Date:        optional(date),
				Time:        optional(timeOfDay),
				ProjectID:   optional(projectID),
				Tags:        tags,
				Type:        itemType,
			}
			if cmd.Flags().Changed("remind") {
				req.ReminderMinutes = &remind
			}

			task, err := app.tasks.CreateTask(context.Background(), req)
			if err != nil {
				log.Fatalf("Failed to create task: %v", err)
			}
			fmt.Printf("Created %s %s\n", task.Type, task.ID)
		},
	}
	addCmd.Flags().String("date", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().String("time", "", "Due time (HH:MM)")
	addCmd.Flags().String("desc", "", "Description")
	addCmd.Flags().String("project", "", "Project id")
	addCmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	addCmd.Flags().Bool("note", false, "Create a note instead of a task")
	addCmd.Flags().Int("remind", 0, "Reminder lead time in minutes")
	tasksCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered by a search query",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			query, _ := cmd.Flags().GetString("query")

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tDATE\tTITLE")
			for _, t := range app.tasks.Search(query) {
				date := ""
				if t.Date != nil {
					date = *t.Date
				}
				done := " "
				if t.Completed {
					done = "x"
				}
				fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\n", t.ID, done, date, t.Title)
			}
			w.Flush()
		},
	}
	listCmd.Flags().String("query", "", "Case-insensitive substring filter")
	tasksCmd.AddCommand(listCmd)

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "edit <id> <title>",
		Short: "Edit a task's title",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			title := args[1]
			if _, err := app.tasks.UpdateTask(context.Background(), args[0], ports.UpdateTaskRequest{Title: &title}); err != nil {
				log.Fatalf("Failed to update task: %v", err)
			}
			fmt.Println("Updated")
		},
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			task, err := app.tasks.ToggleComplete(context.Background(), args[0])
			if err != nil {
				log.Fatalf("Failed to toggle task: %v", err)
			}
			fmt.Printf("Completed: %t\n", task.Completed)
		},
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "plan <id> <date>",
		Short: "Assign a date to an unplanned task",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			if _, err := app.tasks.AssignDate(context.Background(), args[0], args[1]); err != nil {
				log.Fatalf("Failed to plan task: %v", err)
			}
			fmt.Println("Planned")
		},
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			if err := app.tasks.DeleteTask(context.Background(), args[0]); err != nil {
				log.Fatalf("Failed to delete task: %v", err)
			}
			fmt.Println("Deleted")
		},
	})

	countsCmd := &cobra.Command{
		Use:   "counts <date>",
		Short: "Show timeline counters for a selected date",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			counts := app.tasks.Counts(args[0])
			fmt.Printf("todo=%d upcoming=%d unplanned=%d notes=%d\n",
				counts.Todo, counts.Upcoming, counts.Unplanned, counts.Notes)
		},
	}
	tasksCmd.AddCommand(countsCmd)

	return tasksCmd
}

// NewProjectsCommand creates the projects command group
func NewProjectsCommand() *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage projects",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			color, _ := cmd.Flags().GetString("color")
			icon, _ := cmd.Flags().GetString("icon")

			project, err := app.projects.CreateProject(context.Background(), ports.CreateProjectRequest{
				Name:  args[0],
				Color: color,
				Icon:  icon,
			})
			if err != nil {
				log.Fatalf("Failed to create project: %v", err)
			}
			fmt.Printf("Created project %s\n", project.ID)
		},
	}
	addCmd.Flags().String("color", "#6366f1", "Project color")
	addCmd.Flags().String("icon", "", "Project icon")
	projectsCmd.AddCommand(addCmd)

	projectsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects with their progress",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROGRESS\tNAME")
			for _, p := range app.projects.Projects() {
				progress, err := app.projects.ProjectProgress(p.ID)
				if err != nil {
					progress = 0
				}
				fmt.Fprintf(w, "%s\t%d%%\t%s\n", p.ID, progress, p.Name)
			}
			w.Flush()
		},
	})

	projectsCmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project, leaving its tasks in place",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			if err := app.projects.DeleteProject(context.Background(), args[0]); err != nil {
				log.Fatalf("Failed to delete project: %v", err)
			}
			fmt.Println("Deleted")
		},
	})

	projectsCmd.AddCommand(&cobra.Command{
		Use:   "reorder <id>...",
		Short: "Reorder projects; unnamed ids keep their relative tail order",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			if err := app.projects.Reorder(context.Background(), args); err != nil {
				log.Fatalf("Failed to reorder projects: %v", err)
			}
			fmt.Println("Reordered")
		},
	})

	return projectsCmd
}

// NewProfileCommand creates the profile command group
func NewProfileCommand() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the profile and preferences",
	}

	profileCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current profile",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			p := app.profile.Profile()
			fmt.Printf("name=%s email=%s\n", p.Name, p.Email)
		},
	})

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			name, _ := cmd.Flags().GetString("name")
			avatar, _ := cmd.Flags().GetString("avatar")

			req := ports.UpdateProfileRequest{
				Name:   optional(name),
				Avatar: optional(avatar),
			}
			if _, err := app.profile.UpdateProfile(context.Background(), req); err != nil {
				log.Fatalf("Failed to update profile: %v", err)
			}
			fmt.Println("Updated")
		},
	}
	setCmd.Flags().String("name", "", "Display name")
	setCmd.Flags().String("avatar", "", "Avatar reference")
	profileCmd.AddCommand(setCmd)

	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Update preferences",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()

			if cmd.Flags().Changed("dark") {
				dark, _ := cmd.Flags().GetBool("dark")
				if err := app.profile.SetDarkMode(dark); err != nil {
					log.Fatalf("Failed to set dark mode: %v", err)
				}
			}
			if cmd.Flags().Changed("tone") {
				tone, _ := cmd.Flags().GetString("tone")
				if err := app.profile.SetReminderTone(tone); err != nil {
					log.Fatalf("Failed to set reminder tone: %v", err)
				}
			}
			fmt.Println("Saved")
		},
	}
	prefsCmd.Flags().Bool("dark", false, "Dark mode on or off")
	prefsCmd.Flags().String("tone", "", "Reminder tone name")
	profileCmd.AddCommand(prefsCmd)

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "App lock settings",
	}
	enableCmd := &cobra.Command{
		Use:   "enable <pin>",
		Short: "Enable the app lock with a 4 or 6 digit PIN",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			timeout, _ := cmd.Flags().GetInt("timeout")
			if err := app.profile.EnableAppLock(args[0], timeout); err != nil {
				log.Fatalf("Failed to enable app lock: %v", err)
			}
			fmt.Println("App lock enabled")
		},
	}
	enableCmd.Flags().Int("timeout", 5, "Re-lock timeout in minutes (0 = immediate)")
	lockCmd.AddCommand(enableCmd)
	lockCmd.AddCommand(&cobra.Command{
		Use:   "disable",
		Short: "Disable the app lock and forget the PIN",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			if err := app.profile.DisableAppLock(); err != nil {
				log.Fatalf("Failed to disable app lock: %v", err)
			}
			fmt.Println("App lock disabled")
		},
	})
	lockCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the app surface is locked",
		Run: func(cmd *cobra.Command, args []string) {
			app := newClientApp()
			fmt.Printf("locked=%t\n", app.profile.IsLocked())
		},
	})
	profileCmd.AddCommand(lockCmd)

	return profileCmd
}
