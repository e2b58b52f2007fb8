package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
)

type fakeMigrator struct {
	upErr   error
	steps   []int
	forced  []int
	version uint
	verErr  error
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return nil
}

func (f *fakeMigrator) Force(v int) error {
	f.forced = append(f.forced, v)
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, false, f.verErr }

func TestRunUpIgnoresNoChange(t *testing.T) {
	if err := run(&fakeMigrator{upErr: migrate.ErrNoChange}, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := run(&fakeMigrator{upErr: errors.New("syntax error")}, []string{"up"}); err == nil {
		t.Fatal("expected up error to surface")
	}
}

func TestRunDownAndForce(t *testing.T) {
	m := &fakeMigrator{}
	if err := run(m, []string{"down", "2"}); err != nil {
		t.Fatalf("down error: %v", err)
	}
	if len(m.steps) != 1 || m.steps[0] != -2 {
		t.Fatalf("steps = %v, want [-2]", m.steps)
	}
	if err := run(m, []string{"force", "1"}); err != nil {
		t.Fatalf("force error: %v", err)
	}
	if len(m.forced) != 1 || m.forced[0] != 1 {
		t.Fatalf("forced = %v", m.forced)
	}
}

func TestRunArgumentErrors(t *testing.T) {
	for _, args := range [][]string{{"down"}, {"force", "x"}, {"down", "-1"}, {"sideways"}} {
		if err := run(&fakeMigrator{}, args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestRunVersionWithoutMigrations(t *testing.T) {
	if err := run(&fakeMigrator{verErr: migrate.ErrNilVersion}, []string{"version"}); err != nil {
		t.Fatalf("nil version should not be an error, got %v", err)
	}
}
