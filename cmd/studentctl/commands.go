package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"studentrecords/internal/catalog"
	"studentrecords/internal/core"
	"studentrecords/internal/validation"
	"studentrecords/pkg/domain"
)

// command describes a subcommand. storage is false for commands that never
// touch records; backups opens the configured backup store as well.
type command struct {
	run     func(ctx context.Context, a *app, args []string) error
	storage bool
	backups bool
}

var commands = map[string]command{
	"list":          {run: listCmd, storage: true},
	"show":          {run: showCmd, storage: true},
	"search":        {run: searchCmd, storage: true},
	"add":           {run: addCmd, storage: true},
	"update":        {run: updateCmd, storage: true},
	"delete":        {run: deleteCmd, storage: true},
	"add-course":    {run: addCourseCmd, storage: true},
	"remove-course": {run: removeCourseCmd, storage: true},
	"generate-id":   {run: generateIDCmd, storage: true},
	"catalog":       {run: catalogCmd},
	"backup":        {run: backupCmd, storage: true, backups: true},
	"backups":       {run: backupsCmd, storage: true, backups: true},
	"restore":       {run: restoreCmd, storage: true, backups: true},
}

func expectArgs(name string, args []string, n int, shape string) error {
	if len(args) != n {
		return usageErrorf("%s expects %s", name, shape)
	}
	return nil
}

func printRecords(w io.Writer, records []domain.Record, empty string) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, empty)
		return
	}
	for i, r := range records {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprint(w, r.Summary())
	}
}

func listCmd(_ context.Context, a *app, args []string) error {
	if err := expectArgs("list", args, 0, "no arguments"); err != nil {
		return err
	}
	printRecords(a.stdout, a.svc.List(), "No students found.")
	return nil
}

func showCmd(_ context.Context, a *app, args []string) error {
	if err := expectArgs("show", args, 1, "<id>"); err != nil {
		return err
	}
	r, ok := a.svc.Find(args[0])
	if !ok {
		return &domain.NotFoundError{ID: args[0]}
	}
	_, _ = fmt.Fprint(a.stdout, r.Summary())
	return nil
}

func searchCmd(_ context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usageErrorf("search expects <keyword>")
	}
	printRecords(a.stdout, a.svc.Search(strings.Join(args, " ")), "No matching students found.")
	return nil
}

// recordFlags binds the editable record fields to fs.
type recordFlags struct {
	id, kind, name, courses, field, minor, domain string
	age, year                                     int
}

func (f *recordFlags) bind(fs *flag.FlagSet, withIdentity bool) {
	if withIdentity {
		fs.StringVar(&f.id, "id", "", "student id (generated when empty)")
		fs.StringVar(&f.kind, "type", string(domain.KindStudent), "student, undergraduate or postgraduate")
	}
	fs.StringVar(&f.name, "name", "", "full name")
	fs.IntVar(&f.age, "age", 0, "age in years")
	fs.IntVar(&f.year, "year", 1, "year of study")
	fs.StringVar(&f.courses, "courses", "", "comma separated courses")
	fs.StringVar(&f.field, "field", "", "field of study")
	fs.StringVar(&f.minor, "minor", "", "minor subject (undergraduates)")
	fs.StringVar(&f.domain, "domain", "", "research domain (postgraduates)")
}

func newFlagSet(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parseFlags reports malformed flags as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func addCmd(ctx context.Context, a *app, args []string) error {
	var f recordFlags
	fs := newFlagSet("add", a)
	f.bind(fs, true)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return usageErrorf("add takes flags only")
	}
	kind := domain.Kind(strings.ToLower(strings.TrimSpace(f.kind)))
	if !kind.Valid() {
		return usageErrorf("unknown student type %q", f.kind)
	}
	r, err := a.svc.Register(ctx, core.Draft{
		ID:             f.id,
		Kind:           kind,
		Name:           f.name,
		Age:            f.age,
		Year:           f.year,
		Courses:        domain.ParseCourses(f.courses),
		FieldOfStudy:   f.field,
		Minor:          f.minor,
		ResearchDomain: f.domain,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Student %s added successfully.\n", r.ID)
	return nil
}

func updateCmd(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return usageErrorf("update expects <id> [flags]")
	}
	id := args[0]
	var f recordFlags
	fs := newFlagSet("update", a)
	f.bind(fs, false)
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}
	var p core.Patch
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			p.Name = &f.name
		case "age":
			p.Age = &f.age
		case "year":
			p.Year = &f.year
		case "courses":
			p.Courses = domain.ParseCourses(f.courses)
		case "field":
			p.FieldOfStudy = &f.field
		case "minor":
			p.Minor = &f.minor
		case "domain":
			p.ResearchDomain = &f.domain
		}
	})
	if _, err := a.svc.Amend(ctx, id, p); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Student %s updated successfully.\n", id)
	return nil
}

func deleteCmd(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("delete", args, 1, "<id>"); err != nil {
		return err
	}
	if err := a.svc.Delete(ctx, args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Student %s deleted successfully.\n", args[0])
	return nil
}

func addCourseCmd(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("add-course", args, 2, "<id> <course>"); err != nil {
		return err
	}
	r, err := a.svc.AddCourse(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Courses: %s\n", r.CourseList())
	return nil
}

func removeCourseCmd(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("remove-course", args, 2, "<id> <course>"); err != nil {
		return err
	}
	r, err := a.svc.RemoveCourse(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Courses: %s\n", r.CourseList())
	return nil
}

func generateIDCmd(_ context.Context, a *app, args []string) error {
	fs := newFlagSet("generate-id", a)
	name := fs.String("name", "", "student name")
	age := fs.Int("age", 0, "student age")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return usageErrorf("generate-id expects -name")
	}
	if err := validation.ValidateAge(*age); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(a.stdout, a.svc.GenerateID(*name, *age))
	return nil
}

func catalogCmd(_ context.Context, a *app, args []string) error {
	if len(args) > 1 {
		return usageErrorf("catalog expects at most one argument")
	}
	var items []string
	switch {
	case len(args) == 0:
		items = catalog.FieldsOfStudy()
	case strings.EqualFold(args[0], "minors"):
		items = catalog.Minors()
	case strings.EqualFold(args[0], "domains"):
		items = catalog.ResearchDomains()
	default:
		courses, ok := catalog.Courses(args[0])
		if !ok {
			return usageErrorf("unknown field of study %q", args[0])
		}
		items = courses
	}
	for _, item := range items {
		_, _ = fmt.Fprintln(a.stdout, item)
	}
	return nil
}

func backupCmd(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("backup", args, 0, "no arguments"); err != nil {
		return err
	}
	info, err := a.svc.Backup(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Backup written to %s (%d bytes).\n", info.Key, info.Size)
	if keep := a.cfg.Backup.Keep; keep > 0 {
		deleted, err := a.svc.PruneBackups(ctx, keep)
		if err != nil {
			return err
		}
		if deleted > 0 {
			_, _ = fmt.Fprintf(a.stdout, "Pruned %d old backup(s).\n", deleted)
		}
	}
	return nil
}

func backupsCmd(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("backups", args, 0, "no arguments"); err != nil {
		return err
	}
	infos, err := a.svc.Backups(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		_, _ = fmt.Fprintln(a.stdout, "No backups found.")
		return nil
	}
	for _, info := range infos {
		_, _ = fmt.Fprintf(a.stdout, "%s\t%d\t%s\n", info.Key, info.Size, info.Metadata["records"])
	}
	return nil
}

func restoreCmd(ctx context.Context, a *app, args []string) error {
	if err := expectArgs("restore", args, 1, "<key>"); err != nil {
		return err
	}
	if err := a.svc.Restore(ctx, args[0]); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(a.stdout, "Restored %d student(s) from %s.\n", len(a.svc.List()), args[0])
	return nil
}
