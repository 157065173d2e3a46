package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"armik"}, args...))
	return out.String(), errOut.String(), err
}

func TestFK(t *testing.T) {
	out, _, err := runApp(t, "fk")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "right arm")
	test.That(t, out, test.ShouldContainSubstring, "Y:-0.1896, Z:0.7748")

	out, _, err = runApp(t, "--side", "left", "fk")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "left arm")
	test.That(t, out, test.ShouldContainSubstring, "Y:0.1896")

	out, _, err = runApp(t, "fk", "--chain", filepath.Join("..", "kinematics", "testdata", "two_link.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "two_link.json")
}

func TestSolve(t *testing.T) {
	out, _, err := runApp(t, "solve", "--goal=0.2,-0.1,0.9")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "at_goal")
	test.That(t, out, test.ShouldContainSubstring, "goal X:0.2000, Y:-0.1000, Z:0.9000")

	out, _, err = runApp(t, "solve", "--both", "--goal=0.2,-0.1,0.9")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "right")
	test.That(t, out, test.ShouldContainSubstring, "left")
	test.That(t, out, test.ShouldContainSubstring, "at_goal")
}

func TestSolveDebugLogs(t *testing.T) {
	_, errOut, err := runApp(t, "--debug", "solve", "--goal=0.2,-0.1,0.9", "--iterations=1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "step ik solve")
}

func TestSolveErrors(t *testing.T) {
	_, _, err := runApp(t, "solve")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = runApp(t, "solve", "--goal=1,2")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--goal needs 3 values")

	_, _, err = runApp(t, "--side", "middle", "solve", "--goal=1,2,3")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "middle")

	_, _, err = runApp(t, "solve", "--goal=1,2,3", "--chain", "missing.json")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read json file")
}

func TestConfigFlag(t *testing.T) {
	out, _, err := runApp(t, "--config", filepath.Join("..", "config", "testdata", "armik.json"), "fk")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "left arm")
}

func TestTrace(t *testing.T) {
	plotPath := filepath.Join(t.TempDir(), "trace.png")
	out, _, err := runApp(t, "trace", "--goal=0.25,-0.2,1.0", "--plot", plotPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "Rotated Distance")
	test.That(t, out, test.ShouldContainSubstring, "singular limit")
	test.That(t, out, test.ShouldContainSubstring, "rate min")
	test.That(t, out, test.ShouldContainSubstring, "saved "+plotPath)

	info, err := os.Stat(plotPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestSchema(t *testing.T) {
	out, _, err := runApp(t, "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"hand_holding_side"`)
}

func TestLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "armik.log")
	_, errOut, err := runApp(t, "--debug", "--log-file", logPath, "solve", "--goal=0.2,-0.1,0.9", "--iterations=1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, errOut, test.ShouldContainSubstring, "step ik solve")

	data, err := os.ReadFile(logPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldContainSubstring, "step ik solve")
}
