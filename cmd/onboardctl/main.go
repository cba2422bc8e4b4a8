// onboardctl is an operator CLI for an onboardflow server. It talks to the
// JSON API with the same key the dashboard uses.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"

	"github.com/onboardflow/onboardflow/internal/engine"
	"github.com/onboardflow/onboardflow/internal/task"
)

var (
	app       = kingpin.New("onboardctl", "Operator CLI for the onboardflow server")
	serverURL = app.Flag("server", "Server base URL").Default("http://localhost:3200").Envar("ONBOARDFLOW_SERVER_URL").String()
	apiKey    = app.Flag("api-key", "API key").Envar("ONBOARDFLOW_API_KEY").Required().String()
	memberID  = app.Flag("member", "Acting team member ID").Envar("ONBOARDFLOW_MEMBER_ID").String()

	stateCmd = app.Command("state", "Show clients and open tasks")

	clientCmd = app.Command("client", "Client management commands")

	clientAddCmd      = clientCmd.Command("add", "Register a new client and start its pipeline")
	clientAddName     = clientAddCmd.Flag("name", "Contact name").String()
	clientAddBusiness = clientAddCmd.Flag("business", "Business name").Required().String()
	clientAddPackage  = clientAddCmd.Flag("package", "Purchased package").String()
	clientAddEmail    = clientAddCmd.Flag("email", "Contact email").String()
	clientAddReqs     = clientAddCmd.Flag("requirement", "Initial requirement (repeatable)").Strings()
	clientAddAddons   = clientAddCmd.Flag("addon", "Purchased addon (repeatable)").Strings()

	clientStatusCmd    = clientCmd.Command("status", "Override a client's status")
	clientStatusID     = clientStatusCmd.Arg("id", "Client ID").Required().String()
	clientStatusTarget = clientStatusCmd.Arg("status", "New status").Required().String()

	taskCmd = app.Command("task", "Task management commands")

	taskListCmd = taskCmd.Command("list", "List open tasks")

	taskCompleteCmd = taskCmd.Command("complete", "Quick-complete a task")
	taskCompleteID  = taskCompleteCmd.Arg("id", "Task ID").Required().String()

	taskProgressCmd  = taskCmd.Command("progress", "Log progress on a task")
	taskProgressID   = taskProgressCmd.Arg("id", "Task ID").Required().String()
	taskProgressPct  = taskProgressCmd.Arg("percentage", "Completion percentage").Required().Int()
	taskProgressNote = taskProgressCmd.Flag("note", "Progress note").Default("").String()
	taskProgressReqs = taskProgressCmd.Flag("requirement", "New requirement (repeatable)").Strings()

	taskPriorityCmd    = taskCmd.Command("priority", "Set a task's priority")
	taskPriorityID     = taskPriorityCmd.Arg("id", "Task ID").Required().String()
	taskPriorityTarget = taskPriorityCmd.Arg("priority", "Urgent, High, Regular or Low").Required().String()

	taskTimerCmd = taskCmd.Command("timer", "Toggle the acting member's timer on a task")
	taskTimerID  = taskTimerCmd.Arg("id", "Task ID").Required().String()

	deadlineCmd   = app.Command("deadline", "Override a stage task's allowed days")
	deadlineTitle = deadlineCmd.Arg("title", "Stage task title").Required().String()
	deadlineDays  = deadlineCmd.Arg("days", "Allowed days").Required().Int()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	c := &apiClient{baseURL: *serverURL, apiKey: *apiKey, memberID: *memberID}

	var err error
	switch command {
	case stateCmd.FullCommand():
		err = showState(c)
	case clientAddCmd.FullCommand():
		err = addClient(c)
	case clientStatusCmd.FullCommand():
		err = c.call(http.MethodPatch, "/api/clients/"+*clientStatusID+"/status",
			map[string]string{"status": *clientStatusTarget}, nil)
	case taskListCmd.FullCommand():
		err = listTasks(c)
	case taskCompleteCmd.FullCommand():
		err = c.call(http.MethodPost, "/api/tasks/"+*taskCompleteID+"/complete", nil, nil)
	case taskProgressCmd.FullCommand():
		err = c.call(http.MethodPost, "/api/tasks/"+*taskProgressID+"/progress", map[string]any{
			"note":                 *taskProgressNote,
			"completionPercentage": *taskProgressPct,
			"newRequirements":      *taskProgressReqs,
		}, nil)
	case taskPriorityCmd.FullCommand():
		err = c.call(http.MethodPatch, "/api/tasks/"+*taskPriorityID+"/priority",
			map[string]string{"priority": *taskPriorityTarget}, nil)
	case taskTimerCmd.FullCommand():
		err = c.call(http.MethodPost, "/api/tasks/"+*taskTimerID+"/timer", nil, nil)
	case deadlineCmd.FullCommand():
		err = c.call(http.MethodPut, "/api/settings/workflow-deadlines",
			map[string]any{"taskTitle": *deadlineTitle, "days": *deadlineDays}, nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addClient(c *apiClient) error {
	input := engine.NewClientInput{
		Name:         *clientAddName,
		BusinessName: *clientAddBusiness,
		Package:      *clientAddPackage,
		Email:        *clientAddEmail,
		Requirements: *clientAddReqs,
		Addons:       *clientAddAddons,
	}
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.call(http.MethodPost, "/api/clients", input, &created); err != nil {
		return err
	}
	fmt.Printf("created client %s (%s)\n", color.CyanString(created.ID), created.Status)
	return nil
}

func showState(c *apiClient) error {
	state, err := c.fetchState()
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	bold.Println("Clients")
	for _, cl := range state.Clients {
		fmt.Printf("  %s  %-30s %-25s %s\n",
			cl.ID, cl.BusinessName, string(cl.Status), formatDuration(cl.TotalTimeSpent))
	}
	bold.Println("Open tasks")
	printTasks(state)
	return nil
}

func listTasks(c *apiClient) error {
	state, err := c.fetchState()
	if err != nil {
		return err
	}
	printTasks(state)
	return nil
}

func printTasks(state *engine.State) {
	for _, t := range state.Tasks {
		if t.IsCompleted {
			continue
		}
		fmt.Printf("  %s  %-35s %-8s %s %3d%%  %s\n",
			t.ID, t.Title, string(t.Division), colorPriority(t.Priority), t.CompletionPercentage,
			t.Deadline.Format("2006-01-02"))
	}
}

func colorPriority(p task.Priority) string {
	switch p {
	case task.PriorityUrgent:
		return color.RedString("%-8s", string(p))
	case task.PriorityHigh:
		return color.YellowString("%-8s", string(p))
	default:
		return fmt.Sprintf("%-8s", string(p))
	}
}

func formatDuration(seconds int64) string {
	return time.Duration(seconds * int64(time.Second)).String()
}

type apiClient struct {
	baseURL  string
	apiKey   string
	memberID string
}

func (c *apiClient) fetchState() (*engine.State, error) {
	var state engine.State
	if err := c.call(http.MethodGet, "/api/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *apiClient) call(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.memberID != "" {
		req.Header.Set("X-Member-Id", c.memberID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
