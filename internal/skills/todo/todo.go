// Package todo manages a persistent to-do list stored in context
// memory under the "todo_list" key.
package todo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/metoolok/metoolok/internal/skills"
)

const listKey = "todo_list"

// TodoSkill manages daily tasks.
type TodoSkill struct {
	*skills.BaseSkill
	now func() time.Time
}

// New creates the todo skill.
func New(deps skills.Deps) (skills.Skill, error) {
	return &TodoSkill{
		BaseSkill: skills.NewBaseSkill(
			"todo",
			"Manages your daily tasks.",
			[]string{"task", "todo", "remind", "checklist"},
			deps.Memory,
			deps.Logger,
		),
		now: time.Now,
	}, nil
}

// Execute dispatches on the sub-command embedded in the input:
// "add: <task>", "done: <n>", "list" and "clear".
func (s *TodoSkill) Execute(ctx context.Context, input string) (string, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "add:"):
		return s.addTask(input), nil
	case strings.Contains(lower, "done:"):
		return s.completeTask(input), nil
	case strings.Contains(lower, "clear"):
		s.SaveToMemory(listKey, []interface{}{})
		return "🗑️ List cleared.", nil
	case strings.Contains(lower, "list") || strings.Contains(lower, "show"):
		return s.listTasks(), nil
	}

	return "💡 **Usage:** `todo add: Buy milk`, `todo list`, `todo done: 2`, `todo clear`", nil
}

func (s *TodoSkill) addTask(input string) string {
	idx := strings.Index(strings.ToLower(input), "add:")
	content := strings.TrimSpace(input[idx+len("add:"):])
	if content == "" {
		return "⚠️ Cannot add an empty task."
	}

	tasks := s.ReadList(listKey)
	tasks = append(tasks, map[string]interface{}{
		"task":       content,
		"created_at": s.now().Format("2006-01-02 15:04"),
		"status":     "pending",
	})
	s.SaveToMemory(listKey, tasks)

	return fmt.Sprintf("✅ **Task Added:** %s", content)
}

func (s *TodoSkill) listTasks() string {
	tasks := s.ReadList(listKey)
	if len(tasks) == 0 {
		return "📂 Your to-do list is empty."
	}

	var b strings.Builder
	b.WriteString("### 📝 Your Tasks\n")
	for i, raw := range tasks {
		text, created, status := taskFields(raw)
		line := fmt.Sprintf("%d. %s", i+1, text)
		if status == "done" {
			line = fmt.Sprintf("%d. ~~%s~~ ✔", i+1, text)
		}
		if created != "" {
			line += fmt.Sprintf(" _(%s)_", created)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *TodoSkill) completeTask(input string) string {
	idx := strings.Index(strings.ToLower(input), "done:")
	fields := strings.Fields(input[idx+len("done:"):])
	if len(fields) == 0 {
		return "⚠️ Please give a task number. Example: `todo done: 2`"
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 {
		return "⚠️ Please give a task number. Example: `todo done: 2`"
	}

	tasks := s.ReadList(listKey)
	if n > len(tasks) {
		return fmt.Sprintf("⚠️ There is no task %d. You have %d task(s).", n, len(tasks))
	}

	text, created, _ := taskFields(tasks[n-1])
	tasks[n-1] = map[string]interface{}{
		"task":       text,
		"created_at": created,
		"status":     "done",
	}
	s.SaveToMemory(listKey, tasks)

	return fmt.Sprintf("✔️ **Task Done:** %s", text)
}

// taskFields tolerates both the structured entries this skill writes
// and bare strings left over from older data.
func taskFields(raw interface{}) (text, created, status string) {
	switch v := raw.(type) {
	case map[string]interface{}:
		text, _ = v["task"].(string)
		created, _ = v["created_at"].(string)
		status, _ = v["status"].(string)
	case string:
		text = v
	default:
		text = fmt.Sprintf("%v", raw)
	}
	return text, created, status
}
