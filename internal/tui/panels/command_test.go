package panels

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dashctl/internal/kube"
	"dashctl/internal/tui/screen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func newTestCommandPanel(t *testing.T, clientset kubernetes.Interface) (*CommandPanel, *screen.Screen) {
	t.Helper()
	s := screen.New(100, 20)
	p := NewCommandPanel(s, clientset, "dev")
	p.now = func() time.Time { return nodesNow }
	p.SetVisible(true)
	return p, s
}

func connectedCommandPanel(t *testing.T) (*CommandPanel, *screen.Screen) {
	t.Helper()
	clientset := testClientset()
	clientset.Discovery().(*fakediscovery.FakeDiscovery).FakedServerVersion = &version.Info{GitVersion: "v1.33.1"}
	return newTestCommandPanel(t, clientset)
}

// typeKeys sends each character as a keypress.
func typeKeys(p *CommandPanel, keys string) {
	for _, r := range keys {
		p.HandleInput(screen.NewKeyInput(string(r)))
	}
}

func runCommand(t *testing.T, p *CommandPanel, command string) {
	t.Helper()
	if !p.InputActive() {
		require.True(t, press(t, p, "enter"))
	}
	typeKeys(p, command)
	p.HandleInput(screen.NewKeyInput("enter"))
}

func TestCommandPanel_Idle(t *testing.T) {
	p, s := connectedCommandPanel(t)
	p.Redraw(true)

	assert.False(t, p.InputActive())
	assert.Equal(t, "Command Prompt:\n>>> to use this panel press enter", s.Content())
	assert.Equal(t, []screen.Attr{screen.Green, screen.Bold}, s.AttrsAt(0, 1))
	assert.Equal(t, []screen.Attr{screen.Cyan, screen.Bold}, s.AttrsAt(4, 1))
}

func TestCommandPanel_StartAndStopInput(t *testing.T) {
	p, s := connectedCommandPanel(t)

	require.True(t, press(t, p, "enter"))
	assert.True(t, p.InputActive())

	p.Redraw(true)
	lines := contentLines(s)
	assert.Equal(t, `Command Prompt (enter "/help" for usage or a blank line to stop):`, lines[0])
	assert.Equal(t, ">>>", lines[1])
	assert.Equal(t, []screen.Attr{screen.Highlight}, s.AttrsAt(4, 1), "cursor")

	// a blank line stops
	p.HandleInput(screen.NewKeyInput("enter"))
	assert.False(t, p.InputActive())
	assert.Empty(t, p.History())

	require.True(t, press(t, p, "enter"))
	typeKeys(p, "nod")
	p.HandleInput(screen.NewKeyInput("esc"))
	assert.False(t, p.InputActive())
	assert.Empty(t, p.History())
}

func TestCommandPanel_Editing(t *testing.T) {
	p, s := connectedCommandPanel(t)
	require.True(t, press(t, p, "enter"))

	typeKeys(p, "nodex")
	p.HandleInput(screen.NewKeyInput("backspace"))
	typeKeys(p, "s")
	p.HandleInput(screen.NewKeyInput("left"))

	p.Redraw(true)
	assert.Equal(t, ">>> nodes", contentLines(s)[1])
	assert.Equal(t, []screen.Attr{screen.Highlight}, s.AttrsAt(8, 1), "cursor on the last character")
	assert.Nil(t, s.AttrsAt(7, 1))
}

func TestCommandPanel_Nodes(t *testing.T) {
	p, s := connectedCommandPanel(t)
	runCommand(t, p, "nodes")
	p.Redraw(true)

	lines := contentLines(s)
	assert.Equal(t, ">>> nodes", lines[1])
	assert.Contains(t, strings.ToUpper(lines[2]), "NAME")
	assert.Contains(t, lines[3], "control-a")
	assert.Contains(t, lines[3], "3d")
	assert.Contains(t, lines[4], "worker-b")
	assert.Contains(t, lines[5], "worker-c")
	assert.Contains(t, lines[5], "NotReady")
	assert.Equal(t, "2 of 3 nodes ready", lines[6])
	assert.Equal(t, ">>>", lines[7], "still taking input")

	assert.Equal(t, []screen.Attr{screen.Green, screen.Bold}, s.AttrsAt(4, 1))
	assert.Equal(t, []screen.Attr{screen.Bold}, s.AttrsAt(0, 2))
	assert.Equal(t, []screen.Attr{screen.Blue}, s.AttrsAt(0, 3))
	assert.Equal(t, []string{"nodes"}, p.History())
}

func TestCommandPanel_Node(t *testing.T) {
	p, s := connectedCommandPanel(t)
	runCommand(t, p, "node control-a")
	p.Redraw(true)

	lines := contentLines(s)
	assert.Equal(t, ">>> node control-a", lines[1])
	assert.Equal(t, []screen.Attr{screen.Green, screen.Bold}, s.AttrsAt(4, 1))
	assert.Equal(t, []screen.Attr{screen.Cyan, screen.Bold}, s.AttrsAt(9, 1))

	content := s.Content()
	assert.Contains(t, content, "name:       control-a")
	assert.Contains(t, content, "status:     Ready")
	assert.Contains(t, content, "roles:      control-plane")
	assert.Contains(t, content, "address:    172.18.0.2")
	assert.Contains(t, content, "capacity:   8 cpu, 32Gi memory")
	assert.Contains(t, content, "created:    2024-02-27 00:00 (3d ago)")
	assert.Contains(t, content, "conditions: no pressure")
}

func TestCommandPanel_Errors(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"node worker-z", "no node named worker-z"},
		{"node", "usage: node <name>"},
		{"pods", "Unrecognized command: pods (enter /help for usage)"},
		{"/nope", "Unrecognized command: /nope (enter /help for usage)"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			p, s := connectedCommandPanel(t)
			runCommand(t, p, tt.command)
			p.Redraw(true)

			lines := contentLines(s)
			assert.Equal(t, tt.want, lines[2])
			assert.Equal(t, []screen.Attr{screen.Red, screen.Bold}, s.AttrsAt(0, 2))
		})
	}
}

func TestCommandPanel_ListError(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("connection refused")
	})
	p, s := newTestCommandPanel(t, clientset)
	runCommand(t, p, "nodes")
	p.Redraw(true)

	assert.Contains(t, contentLines(s)[2], "connection refused")
}

func TestCommandPanel_NotConnected(t *testing.T) {
	p, s := newTestCommandPanel(t, nil)
	runCommand(t, p, "nodes")
	runCommand(t, p, "version")
	p.Redraw(true)

	lines := contentLines(s)
	assert.Equal(t, "not connected to a cluster", lines[2])
	assert.Equal(t, "not connected to a cluster", lines[4])
}

func TestCommandPanel_Version(t *testing.T) {
	p, s := connectedCommandPanel(t)
	runCommand(t, p, "version")
	p.Redraw(true)

	assert.Equal(t, "server:     v1.33.1", contentLines(s)[2])
}

func TestCommandPanel_Contexts(t *testing.T) {
	orig := kube.GetAvailableContexts
	defer func() { kube.GetAvailableContexts = orig }()
	kube.GetAvailableContexts = func() ([]string, error) {
		return []string{"dev", "prod"}, nil
	}

	p, s := connectedCommandPanel(t)
	runCommand(t, p, "contexts")
	p.Redraw(true)

	lines := contentLines(s)
	assert.Equal(t, "* dev", lines[2])
	assert.Equal(t, "  prod", lines[3])
	assert.Equal(t, []screen.Attr{screen.Blue, screen.Bold}, s.AttrsAt(0, 2))

	kube.GetAvailableContexts = func() ([]string, error) {
		return nil, errors.New("no kubeconfig")
	}
	runCommand(t, p, "contexts")
	p.Redraw(true)
	assert.Equal(t, "no kubeconfig", contentLines(s)[5])
}

func TestCommandPanel_HelpAndClear(t *testing.T) {
	p, s := connectedCommandPanel(t)
	runCommand(t, p, "/help")
	p.Redraw(true)

	lines := contentLines(s)
	assert.Equal(t, ">>> /help", lines[1])
	assert.Equal(t, []screen.Attr{screen.Magenta, screen.Bold}, s.AttrsAt(4, 1))
	assert.Equal(t, "nodes        list the cluster's nodes", lines[2])
	assert.GreaterOrEqual(t, lineIndex(lines, "/clear       clear the output"), 0)

	runCommand(t, p, "/clear")
	p.Redraw(true)
	assert.Equal(t, `Command Prompt (enter "/help" for usage or a blank line to stop):`+"\n>>>", s.Content())
	assert.Equal(t, []string{"/help", "/clear"}, p.History())
}

func TestCommandPanel_History(t *testing.T) {
	p, s := connectedCommandPanel(t)
	runCommand(t, p, "version")
	runCommand(t, p, "nodes")
	runCommand(t, p, "nodes")
	assert.Equal(t, []string{"version", "nodes"}, p.History(), "repeats are kept once")

	typeKeys(p, "no")
	p.HandleInput(screen.NewKeyInput("up"))
	assert.Equal(t, "nodes", p.input.Value())
	p.HandleInput(screen.NewKeyInput("up"))
	assert.Equal(t, "version", p.input.Value())
	p.HandleInput(screen.NewKeyInput("up"))
	assert.Equal(t, "version", p.input.Value(), "stops at the oldest")

	p.HandleInput(screen.NewKeyInput("down"))
	assert.Equal(t, "nodes", p.input.Value())
	p.HandleInput(screen.NewKeyInput("down"))
	assert.Equal(t, "no", p.input.Value(), "back to what was being typed")

	p.HandleInput(screen.NewKeyInput("up"))
	p.HandleInput(screen.NewKeyInput("up"))
	p.HandleInput(screen.NewKeyInput("enter"))
	assert.Equal(t, []string{"version", "nodes", "version"}, p.History())

	runCommand(t, p, "/history")
	p.Redraw(true)
	content := s.Content()
	assert.Contains(t, content, "  1  version")
	assert.Contains(t, content, "  4  /history")
}

func TestCommandPanel_HistoryLimit(t *testing.T) {
	p, _ := newTestCommandPanel(t, nil)
	require.True(t, press(t, p, "enter"))
	for i := 0; i < CommandHistoryLimit+5; i++ {
		runCommand(t, p, fmt.Sprintf("node n%d", i))
	}

	history := p.History()
	assert.Len(t, history, CommandHistoryLimit)
	assert.Equal(t, "node n5", history[0])
}

func TestCommandPanel_BacklogLimit(t *testing.T) {
	p, s := newTestCommandPanel(t, nil)
	// each unknown command adds its input and an error
	for i := 0; i < CommandBacklogLimit; i++ {
		runCommand(t, p, fmt.Sprintf("cmd%d", i))
	}

	assert.Len(t, p.backlog, CommandBacklogLimit)
	assert.Equal(t, ">>> cmd500", p.backlog[0].String())

	// scrolled to the newest output, the prompt on the last row
	p.Redraw(true)
	lines := contentLines(s)
	assert.Equal(t, "Unrecognized command: cmd999 (enter /help for usage)", strings.TrimLeft(lines[17], " │"))
	assert.Equal(t, ">>>", strings.TrimLeft(lines[18], " │"))
}

func TestCommandPanel_Scrolling(t *testing.T) {
	p, s := newTestCommandPanel(t, nil)
	for i := 0; i < 20; i++ {
		runCommand(t, p, fmt.Sprintf("cmd%d", i))
	}
	p.HandleInput(screen.NewKeyInput("esc"))

	require.True(t, press(t, p, "home"))
	p.Redraw(true)
	lines := contentLines(s)
	assert.Equal(t, ">>> cmd0", strings.TrimLeft(lines[1], " │"))

	require.True(t, press(t, p, "end"))
	p.Redraw(true)
	lines = contentLines(s)
	assert.Equal(t, ">>> to use this panel press enter", strings.TrimLeft(lines[18], " │"))

	// page keys scroll while typing too
	require.True(t, press(t, p, "enter"))
	p.HandleInput(screen.NewKeyInput("pgup"))
	p.Redraw(true)
	assert.NotContains(t, s.Content(), ">>> cmd19")
}

func TestFormatInput(t *testing.T) {
	tests := []struct {
		command string
		want    styledLine
	}{
		{"nodes", styledLine{
			text(">>> ", screen.Green, screen.Bold),
			text("nodes", screen.Green, screen.Bold),
		}},
		{"node control-a", styledLine{
			text(">>> ", screen.Green, screen.Bold),
			text("node ", screen.Green, screen.Bold),
			text("control-a", screen.Cyan, screen.Bold),
		}},
		{"/help me", styledLine{
			text(">>> ", screen.Green, screen.Bold),
			text("/help me", screen.Magenta, screen.Bold),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, formatInput(tt.command))
		})
	}
}

func TestCommandPanel_KeyHandlers(t *testing.T) {
	p, _ := connectedCommandPanel(t)

	assert.Equal(t, "enter a command", handler(t, p, "enter").Description)
	assert.Equal(t, "scroll up and down", handler(t, p, "arrows").Description)
	assert.False(t, press(t, p, "x"))
}
