package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"planner/internal/access"
	"planner/internal/board"
	"planner/internal/config"
	"planner/internal/gateway"
	"planner/internal/model"
	"planner/internal/server"
	"planner/internal/ui"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := flagPassword
			if password == "" {
				password = os.Getenv("PLANNER_PASSWORD")
			}
			if password == "" {
				return errors.New("password required: pass --password or set PLANNER_PASSWORD")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
			defer cancel()
			s, err := connect(ctx)
			if err != nil {
				return err
			}
			defer s.Session.Close()

			user, err := s.Session.Login(ctx, s.Client, args[0], password)
			if err != nil {
				ui.Fail(os.Stdout, "%s", gateway.Message(err))
				return err
			}
			ui.Success(os.Stdout, "Logged in as %s", ui.Bold(user.Email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Password (defaults to $PLANNER_PASSWORD)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
			defer cancel()
			s, err := connect(ctx)
			if err != nil {
				return err
			}
			defer s.Session.Close()

			if err := s.Session.Logout(ctx); err != nil {
				return err
			}
			ui.Success(os.Stdout, "Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(_ context.Context, s *server.Server) error {
				u := s.Session.User()
				name := ""
				if u.FullName != nil {
					name = " " + ui.Dim("("+*u.FullName+")")
				}
				fmt.Printf("%s%s\n", ui.Bold(u.Email), name)
				return nil
			})
		},
	}
}

func boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the current board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, s *server.Server) error {
				if err := s.Store.Refresh(ctx); err != nil {
					return err
				}
				if flagBoard != 0 {
					if _, err := s.Store.SelectBoard(ctx, flagBoard); err != nil {
						return err
					}
				}
				ui.RenderBoard(os.Stdout, board.BuildView(s.Store.Boards(), s.Store.CurrentBoard(), s.Store.Tasks()))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&flagBoard, "board", "b", 0, "Board ID (defaults to the first board)")
	return cmd
}

func moveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move TASK_ID COLUMN_ID",
		Short: "Move a task to another column of the board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}
			groupID, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid column id %q", args[1])
			}

			return withSession(cmd, func(ctx context.Context, s *server.Server) error {
				if err := s.Store.Refresh(ctx); err != nil {
					return err
				}
				if flagBoard != 0 {
					if _, err := s.Store.SelectBoard(ctx, flagBoard); err != nil {
						return err
					}
				}
				current := s.Store.CurrentBoard()
				if current == nil {
					return errors.New("no board to move on")
				}
				group, ok := current.Group(groupID)
				if !ok {
					return fmt.Errorf("column %d is not on %s", groupID, current.Name)
				}
				task, err := s.Store.MoveTask(ctx, taskID, groupID)
				if err != nil {
					ui.Fail(os.Stdout, "%s", gateway.Message(err))
					return err
				}
				ui.Success(os.Stdout, "Moved %s to %s", ui.Bold(task.Name), ui.BoldCyan(group.Name))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&flagBoard, "board", "b", 0, "Board ID (defaults to the first board)")
	return cmd
}

func canCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "can ROLE",
		Short: "Check whether you hold at least ROLE in the current team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			required := model.ParseRole(args[0])
			if !required.Known() {
				return fmt.Errorf("unknown role %q, expected viewer, member, admin or owner", args[0])
			}
			return withSession(cmd, func(ctx context.Context, s *server.Server) error {
				if err := s.Store.FetchTeams(ctx); err != nil {
					return err
				}
				team := s.Store.CurrentTeam()
				if team == nil {
					ui.Fail(os.Stdout, "You are not in any team")
					return nil
				}
				role := access.RoleOf(team, s.Session.User())
				if access.Check(team, s.Session.User(), required) {
					ui.Success(os.Stdout, "%s in %s covers %s", ui.Bold(role), team.Name, required)
				} else {
					ui.Fail(os.Stdout, "%s in %s does not cover %s", ui.Bold(role), team.Name, required)
				}
				return nil
			})
		},
	}
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [DATE]",
		Short: "Show or change the fixed hours of a day",
		Long: `Without hour flags the plan is shown. With --sleep, --commute or --work
the plan is saved, and created when the day has none yet.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := time.Now().Format(model.DateLayout)
			if len(args) == 1 {
				date = args[0]
			}
			if _, err := time.Parse(model.DateLayout, date); err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
			}

			var hours model.PlanUpdate
			if cmd.Flags().Changed("sleep") {
				hours.SleepTime = &flagSleep
			}
			if cmd.Flags().Changed("commute") {
				hours.CommuteTime = &flagCommute
			}
			if cmd.Flags().Changed("work") {
				hours.WorkTime = &flagWork
			}

			return withSession(cmd, func(ctx context.Context, s *server.Server) error {
				var (
					p   model.Plan
					err error
				)
				if hours.SleepTime == nil && hours.CommuteTime == nil && hours.WorkTime == nil {
					p, err = s.Store.FetchPlan(ctx, date)
					if errors.Is(err, gateway.ErrNotFound) {
						fmt.Println(ui.Dim("No plan for " + date))
						return nil
					}
				} else {
					p, err = s.Store.SavePlan(ctx, date, hours)
				}
				if err != nil {
					return err
				}
				ui.RenderPlan(os.Stdout, p)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&flagSleep, "sleep", 0, "Hours of sleep")
	cmd.Flags().Float64Var(&flagCommute, "commute", 0, "Hours of commute")
	cmd.Flags().Float64Var(&flagWork, "work", 0, "Hours of work")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP companion",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := server.Init(config.Load())
			if err != nil {
				return err
			}
			s.Run()
			return nil
		},
	}
}
