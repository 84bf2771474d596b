package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/yigit/registrar/internal/app/models"
	"github.com/yigit/registrar/internal/app/models/dto"
	"github.com/yigit/registrar/internal/bootstrap"
	"github.com/yigit/registrar/internal/pkg/helpers"
)

type commandLine struct {
	out     io.Writer
	connect func(c *cli.Context) (*backend, error)
	now     func() time.Time
}

func (cl *commandLine) app() *cli.App {
	return &cli.App{
		Name:  "registrarctl",
		Usage: "administer the student records database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   bootstrap.DefaultConfigPath,
				Usage:   "path to the YAML config file",
				EnvVars: []string{"REGISTRAR_CONFIG"},
			},
		},
		Writer: cl.out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending database migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "status", Usage: "only list pending migrations"},
				},
				Action: cl.withBackend(cl.migrate),
			},
			{
				Name:   "seed",
				Usage:  "insert sample data into an empty database",
				Action: cl.withBackend(cl.seed),
			},
			{
				Name:  "operator",
				Usage: "manage operator accounts",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "create an operator",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
							&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"REGISTRAR_OPERATOR_PASSWORD"}},
							&cli.StringFlag{Name: "role", Value: string(models.RoleClerk), Usage: "admin or clerk"},
						},
						Action: cl.withBackend(cl.addOperator),
					},
					{
						Name:   "list",
						Usage:  "list operators",
						Action: cl.withBackend(cl.listOperators),
					},
				},
			},
			{
				Name:  "students",
				Usage: "inspect student records",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list students",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "class-id"},
							&cli.Int64Flag{Name: "year-id"},
						},
						Action: cl.withBackend(cl.listStudents),
					},
				},
			},
			{
				Name:  "report",
				Usage: "print reports",
				Subcommands: []*cli.Command{
					{
						Name:  "attendance",
						Usage: "count attendance statuses per student",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "class-id", Required: true},
							&cli.Int64Flag{Name: "subject-id", Required: true},
							&cli.StringFlag{Name: "from", Required: true, Usage: "YYYY-MM-DD"},
							&cli.StringFlag{Name: "to", Required: true, Usage: "YYYY-MM-DD"},
						},
						Action: cl.withBackend(cl.attendanceReport),
					},
				},
			},
			{
				Name:  "sweep",
				Usage: "mark scheduled students without attendance as absent",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD, defaults to today"},
				},
				Action: cl.withBackend(cl.sweep),
			},
		},
	}
}

func (cl *commandLine) withBackend(fn func(c *cli.Context, b *backend) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		b, err := cl.connect(c)
		if err != nil {
			return err
		}
		if b.close != nil {
			defer b.close()
		}
		return fn(c, b)
	}
}

func (cl *commandLine) title(s string) {
	color.New(color.FgYellow).Fprintln(cl.out, s)
}

func (cl *commandLine) success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(cl.out, format+"\n", args...)
}

func (cl *commandLine) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(cl.out)
	t.SetHeader(header)
	t.AppendBulk(rows)
	t.Render()
}

func (cl *commandLine) migrate(c *cli.Context, b *backend) error {
	if c.Bool("status") {
		pending, err := b.migrator.Pending(c.Context)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			cl.success("Database is up to date")
			return nil
		}
		cl.title("Pending migrations")
		for _, name := range pending {
			fmt.Fprintln(cl.out, "  "+name)
		}
		return nil
	}

	applied, err := b.migrator.Up(c.Context)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		cl.success("Database is up to date")
		return nil
	}
	cl.success("Applied %d migration(s): %s", len(applied), strings.Join(applied, ", "))
	return nil
}

func (cl *commandLine) seed(c *cli.Context, b *backend) error {
	inserted, err := b.seed(c.Context)
	if err != nil {
		return err
	}
	if !inserted {
		cl.success("Database already has data, nothing inserted")
		return nil
	}
	cl.success("Sample data inserted")
	return nil
}

func (cl *commandLine) addOperator(c *cli.Context, b *backend) error {
	role := models.Role(strings.ToLower(c.String("role")))
	id, err := b.operators.CreateOperator(c.Context, c.String("username"), c.String("password"), role)
	if err != nil {
		return err
	}
	cl.success("Operator %q created with id %d (%s)", c.String("username"), id, role)
	return nil
}

func (cl *commandLine) listOperators(c *cli.Context, b *backend) error {
	operators, err := b.operators.ListOperators(c.Context)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(operators))
	for _, o := range operators {
		rows = append(rows, []string{
			strconv.FormatInt(o.ID, 10),
			o.Username,
			string(o.Role),
			o.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	cl.title("Operators")
	cl.table([]string{"ID", "Username", "Role", "Created"}, rows)
	return nil
}

func optionalID(c *cli.Context, name string) *int64 {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Int64(name)
	return &v
}

func (cl *commandLine) listStudents(c *cli.Context, b *backend) error {
	students, total, err := b.students.List(c.Context, models.StudentFilter{
		ClassID:        optionalID(c, "class-id"),
		AcademicYearID: optionalID(c, "year-id"),
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Sex,
			strconv.FormatFloat(s.Score, 'f', 1, 64),
			helpers.DerefString(s.DepartmentName),
			helpers.DerefString(s.MajorName),
			helpers.DerefString(s.ClassName),
			helpers.DerefString(s.AcademicYearName),
		})
	}
	cl.title(fmt.Sprintf("Students (%d)", total))
	cl.table([]string{"ID", "Name", "Sex", "Score", "Department", "Major", "Class", "Academic Year"}, rows)
	return nil
}

func (cl *commandLine) attendanceReport(c *cli.Context, b *backend) error {
	report, err := b.attendance.Report(c.Context, dto.AttendanceReportQuery{
		ClassID:   c.Int64("class-id"),
		SubjectID: c.Int64("subject-id"),
		From:      c.String("from"),
		To:        c.String("to"),
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, []string{
			strconv.FormatInt(r.StudentID, 10),
			r.Name,
			strconv.Itoa(r.Present),
			strconv.Itoa(r.Absent),
			strconv.Itoa(r.Late),
			strconv.Itoa(r.Excused),
		})
	}
	cl.title(fmt.Sprintf("Attendance %s to %s", report.From, report.To))
	cl.table([]string{"ID", "Name", "Present", "Absent", "Late", "Excused"}, rows)
	return nil
}

func (cl *commandLine) sweep(c *cli.Context, b *backend) error {
	now := time.Now
	if cl.now != nil {
		now = cl.now
	}
	date := helpers.Today(now())
	if s := c.String("date"); s != "" {
		d, err := helpers.ParseDate(s)
		if err != nil {
			return err
		}
		date = d
	}

	// partial failures still report what was inserted
	inserted, err := b.attendance.SweepAbsences(c.Context, date)
	cl.success("Marked %d attendance row(s) absent for %s", inserted, date.Format("2006-01-02"))
	return err
}
