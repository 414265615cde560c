package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func setupTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "iot.db"))
	t.Setenv("MODEL_PATH", filepath.Join(dir, "model.json"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_PredictBeforeTrain(t *testing.T) {
	setupTestEnv(t)

	out, err := execute(t, "predict", "--temperature", "80", "--vibration", "0.05", "--pressure", "28")
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if !strings.Contains(out, "Model not trained yet") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCLI_TrainEmpty(t *testing.T) {
	setupTestEnv(t)

	out, err := execute(t, "train")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.Contains(out, "No data available to train") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCLI_FullCycle(t *testing.T) {
	setupTestEnv(t)

	for i := 0; i < 4; i++ {
		out, err := execute(t, "add", "hot", "--temperature", "95", "--vibration", "0.01", "--pressure", "35", "--status", "FAIL")
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !strings.Contains(out, "Data added successfully") {
			t.Errorf("unexpected add output %q", out)
		}
		if _, err := execute(t, "add", "cool", "--temperature", "70", "--vibration", "0.01", "--pressure", "35", "--status", "OK"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	out, err := execute(t, "train")
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if !strings.Contains(out, "Model trained successfully on 8 readings") {
		t.Errorf("unexpected train output %q", out)
	}

	out, err = execute(t, "predict", "--temperature", "95", "--vibration", "0.01", "--pressure", "35")
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if !strings.Contains(out, "Prediction: FAIL") {
		t.Errorf("unexpected predict output %q", out)
	}

	out, err = execute(t, "stats")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "Records: 8") || !strings.Contains(out, "trained on 8 readings") {
		t.Errorf("unexpected stats output %q", out)
	}
}

func TestCLI_Simulate(t *testing.T) {
	setupTestEnv(t)

	out, err := execute(t, "simulate", "m1", "-n", "5")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if !strings.Contains(out, "5 simulated IoT records added for machine m1") {
		t.Errorf("unexpected output %q", out)
	}

	t.Setenv("SIMULATE_DEFAULT_COUNT", "2")
	out, err = execute(t, "simulate", "m2")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if !strings.Contains(out, "2 simulated IoT records added for machine m2") {
		t.Errorf("default count not applied: %q", out)
	}
}

func TestCLI_AddInvalidStatus(t *testing.T) {
	setupTestEnv(t)

	_, err := execute(t, "add", "m1", "--temperature", "75", "--vibration", "0.02", "--pressure", "30", "--status", "BROKEN")
	if err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestCLI_AddRequiresFlags(t *testing.T) {
	setupTestEnv(t)

	if _, err := execute(t, "add", "m1", "--temperature", "75"); err == nil {
		t.Error("expected error for missing flags")
	}
}

func TestCLI_TrainDegenerate(t *testing.T) {
	setupTestEnv(t)

	if _, err := execute(t, "add", "m1", "--temperature", "75", "--vibration", "0.02", "--pressure", "30", "--status", "OK"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	_, err := execute(t, "train")
	if err == nil || !strings.Contains(err.Error(), "training rejected") {
		t.Errorf("expected training rejection, got %v", err)
	}
}
