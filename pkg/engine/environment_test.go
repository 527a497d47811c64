package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/riftlang/rift/pkg/lang"
)

func TestEnvironmentVariables(t *testing.T) {
	env := NewEnvironment(nil)

	if _, ok := env.Variable("x"); ok {
		t.Fatal("Variable returned a value for an unset name")
	}

	env.SetVariable("x", NumberValue(42))
	v, ok := env.Variable("x")
	if !ok {
		t.Fatal("Variable did not find x")
	}
	if v.Kind != ValueNumber || v.Number != 42 {
		t.Errorf("x = %+v, want number 42", v)
	}

	env.SetVariable("x", StringValue("hello"))
	v, _ = env.Variable("x")
	if v.Kind != ValueString || v.Text != "hello" {
		t.Errorf("x = %+v, want string hello", v)
	}
	if env.VariableCount() != 1 {
		t.Errorf("VariableCount = %d, want 1", env.VariableCount())
	}
}

func TestValueString(t *testing.T) {
	if got := NumberValue(7).String(); got != "7" {
		t.Errorf("NumberValue(7).String() = %q, want \"7\"", got)
	}
	if got := StringValue("hi").String(); got != "hi" {
		t.Errorf("StringValue(hi).String() = %q, want \"hi\"", got)
	}
}

func TestEnvironmentRiftOrder(t *testing.T) {
	env := NewEnvironment(nil)
	env.RegisterRift("alpha", []lang.Node{&lang.Number{Value: 1}})
	env.RegisterRift("beta", []lang.Node{&lang.Number{Value: 2}})
	env.RegisterRift("gamma", []lang.Node{&lang.Number{Value: 3}})

	// Re-registering replaces the body but keeps the original position.
	env.RegisterRift("alpha", []lang.Node{&lang.Number{Value: 9}})

	snapshot := env.RiftSnapshot()
	if len(snapshot) != 3 {
		t.Fatalf("RiftSnapshot has %d rifts, want 3", len(snapshot))
	}
	order := []string{snapshot[0].Name, snapshot[1].Name, snapshot[2].Name}
	want := []string{"alpha", "beta", "gamma"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("rift order = %v, want %v", order, want)
		}
	}
	if n := snapshot[0].Body[0].(*lang.Number).Value; n != 9 {
		t.Errorf("alpha body = %d, want replaced value 9", n)
	}
}

func TestEnvironmentCallablePrecedence(t *testing.T) {
	env := NewEnvironment(nil)
	riftBody := []lang.Node{&lang.Number{Value: 1}}
	taskBody := []lang.Node{&lang.Number{Value: 2}}

	env.RegisterTask("work", taskBody)
	body, ok := env.Callable("work")
	if !ok {
		t.Fatal("Callable did not find task work")
	}
	if body[0].(*lang.Number).Value != 2 {
		t.Error("Callable returned wrong body for task-only name")
	}

	env.RegisterRift("work", riftBody)
	body, _ = env.Callable("work")
	if body[0].(*lang.Number).Value != 1 {
		t.Error("Callable did not prefer the rift over the task")
	}
}

func TestEnvironmentConcurrentAccess(t *testing.T) {
	env := NewEnvironment(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			env.SetVariable("shared", NumberValue(n))
			env.RegisterRift(fmt.Sprintf("rift%d", n), nil)
			env.Variable("shared")
			env.RiftNames()
		}(i)
	}
	wg.Wait()

	if env.VariableCount() != 1 {
		t.Errorf("VariableCount = %d, want 1", env.VariableCount())
	}
	v, ok := env.Variable("shared")
	if !ok || v.Kind != ValueNumber || v.Number < 0 || v.Number > 49 {
		t.Errorf("shared = %+v, want a number written by some writer", v)
	}
	if len(env.RiftNames()) != 50 {
		t.Errorf("got %d rifts, want 50", len(env.RiftNames()))
	}
}

func TestEnvironmentReset(t *testing.T) {
	env := NewEnvironment(nil)
	env.SetVariable("x", NumberValue(1))
	env.RegisterRift("r", nil)
	env.RegisterTask("t", nil)
	env.SetTargetLanguage("go")
	env.Artifacts().Put("hash", "output")

	env.Reset()

	if env.VariableCount() != 0 {
		t.Error("Reset left variables behind")
	}
	if len(env.RiftNames()) != 0 || len(env.TaskNames()) != 0 {
		t.Error("Reset left rifts or tasks behind")
	}
	if env.TargetLanguage() != "" {
		t.Error("Reset left the target language set")
	}
	if env.Artifacts().Len() != 0 {
		t.Error("Reset left cached artifacts behind")
	}
}
