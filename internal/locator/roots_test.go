package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envOf(vars map[string]string) Env {
	return func(key string) string { return vars[key] }
}

func TestCandidateRoots_Windows(t *testing.T) {
	env := envOf(map[string]string{
		"USERPROFILE": `C:\Users\alex`,
		"USERNAME":    "alex",
	})

	roots := CandidateRoots(env, `C:\Users\alex`, "windows", []string{`D:\Users\alex`})

	assert.Equal(t, []string{`C:\Users\alex`, `D:\Users\alex`}, roots)
}

func TestCandidateRoots_WindowsDistinctProfileDir(t *testing.T) {
	env := envOf(map[string]string{
		"USERPROFILE": `E:\Profiles\alex`,
		"USERNAME":    "alex",
		"SystemDrive": "C:",
	})

	roots := CandidateRoots(env, `E:\Profiles\alex`, "windows", nil)

	assert.Equal(t, []string{`E:\Profiles\alex`, `C:\Users\alex`}, roots)
}

func TestCandidateRoots_Unix(t *testing.T) {
	env := envOf(map[string]string{"USERNAME": "alex"})

	roots := CandidateRoots(env, "/home/alex", "linux", []string{"/mnt/backup/home/alex/", "/home/alex"})

	assert.Equal(t, []string{"/home/alex", "/mnt/backup/home/alex"}, roots)
}

func TestCandidateRoots_Empty(t *testing.T) {
	assert.Empty(t, CandidateRoots(envOf(nil), "", "linux", nil))
}
