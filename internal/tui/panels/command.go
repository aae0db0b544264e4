package panels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dashctl/internal/kube"
	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"
	"dashctl/pkg/logging"

	"github.com/charmbracelet/bubbles/textinput"
	"k8s.io/client-go/kubernetes"
)

const (
	commandSubsystem = "CommandPanel"

	commandPrompt = ">>> "
	commandUsage  = "to use this panel press enter"

	// CommandHistoryLimit is the number of commands recalled with up and
	// down.
	CommandHistoryLimit = 100
	// CommandBacklogLimit is the number of input and output lines kept.
	CommandBacklogLimit = 1000

	commandTimeout = 10 * time.Second
)

var errNotConnected = errors.New("not connected to a cluster")

var commandHelp = []struct {
	command     string
	description string
}{
	{"nodes", "list the cluster's nodes"},
	{"node <name>", "details of a node"},
	{"version", "version of the API server"},
	{"contexts", "contexts in the kubeconfig"},
	{"/history", "commands entered so far"},
	{"/clear", "clear the output"},
	{"/help", "this message"},
}

// CommandPanel is a prompt for read-only queries against the cluster. Enter
// starts reading commands, and a blank line stops. It's only used from the
// render goroutine so it has no lock.
type CommandPanel struct {
	*panel.Panel

	clientset   kubernetes.Interface
	contextName string
	now         func() time.Time

	input      textinput.Model
	inputMode  bool
	history    []string
	historyPos int
	draft      string
	backlog    []styledLine
	scroller   screen.Scroller
}

// NewCommandPanel creates a prompt querying clientset, which may be nil if
// there's no cluster.
func NewCommandPanel(display panel.Display, clientset kubernetes.Interface, contextName string) *CommandPanel {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 256

	p := &CommandPanel{
		clientset:   clientset,
		contextName: contextName,
		now:         time.Now,
		input:       input,
	}
	p.Panel = panel.New(commandSubsystem, display, p)
	return p
}

// KeyHandlers provides starting input and scrolling the output.
func (p *CommandPanel) KeyHandlers() []panel.KeyHandler {
	return []panel.KeyHandler{
		panel.NewKeyHandler("enter", "enter a command", panel.ActionNoArg(p.startInput),
			panel.WithKeyFunc(screen.KeyInput.IsSelection)),
		panel.NewKeyHandler("arrows", "scroll up and down", panel.ActionWithKey(p.scroll),
			panel.WithKeyFunc(screen.KeyInput.IsScroll)),
	}
}

// InputActive reports whether we're reading a command.
func (p *CommandPanel) InputActive() bool {
	return p.inputMode
}

// HandleInput edits the command being entered.
func (p *CommandPanel) HandleInput(k screen.KeyInput) {
	switch {
	case k.Match("enter"):
		p.submit()
	case k.Match("esc"):
		p.stopInput()
	case k.Match("up"):
		p.recall(-1)
	case k.Match("down"):
		p.recall(1)
	case k.Match("page_up"), k.Match("page_down"):
		p.scroll(k)
	default:
		p.input, _ = p.input.Update(k.Msg())
	}
}

// History is the commands entered, oldest first.
func (p *CommandPanel) History() []string {
	return append([]string(nil), p.history...)
}

func (p *CommandPanel) startInput() {
	p.inputMode = true
	p.input.Reset()
	p.input.Focus()
	p.historyPos = len(p.history)
	p.scrollToEnd()
}

func (p *CommandPanel) stopInput() {
	p.inputMode = false
	p.input.Blur()
	p.input.Reset()
	p.draft = ""
}

// recall steps through the history, keeping what was being typed to come
// back to.
func (p *CommandPanel) recall(step int) {
	pos := p.historyPos + step
	if pos < 0 || pos > len(p.history) {
		return
	}

	if p.historyPos == len(p.history) {
		p.draft = p.input.Value()
	}
	p.historyPos = pos

	if pos == len(p.history) {
		p.input.SetValue(p.draft)
	} else {
		p.input.SetValue(p.history[pos])
	}
	p.input.CursorEnd()
}

func (p *CommandPanel) submit() {
	command := strings.TrimSpace(p.input.Value())
	if command == "" {
		p.stopInput()
		return
	}

	p.input.Reset()
	p.draft = ""
	p.addHistory(command)

	if command == "/clear" {
		p.backlog = nil
		p.scroller = screen.Scroller{}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	output := p.execute(ctx, command)

	p.backlog = append(p.backlog, formatInput(command))
	p.backlog = append(p.backlog, output...)
	if overflow := len(p.backlog) - CommandBacklogLimit; overflow > 0 {
		p.backlog = append([]styledLine(nil), p.backlog[overflow:]...)
	}
	p.scrollToEnd()
}

func (p *CommandPanel) addHistory(command string) {
	if n := len(p.history); n == 0 || p.history[n-1] != command {
		p.history = append(p.history, command)
	}
	if overflow := len(p.history) - CommandHistoryLimit; overflow > 0 {
		p.history = append([]string(nil), p.history[overflow:]...)
	}
	p.historyPos = len(p.history)
}

// execute runs a command, providing its output.
func (p *CommandPanel) execute(ctx context.Context, command string) []styledLine {
	name, arg, _ := strings.Cut(command, " ")
	arg = strings.TrimSpace(arg)

	var output []styledLine
	var err error
	switch name {
	case "/help":
		output = helpOutput()
	case "/history":
		output = p.historyOutput()
	case "nodes":
		output, err = p.nodesOutput(ctx)
	case "node":
		output, err = p.nodeOutput(ctx, arg)
	case "version":
		output, err = p.versionOutput()
	case "contexts":
		output, err = p.contextsOutput()
	default:
		return []styledLine{errorOutput(fmt.Sprintf("Unrecognized command: %s (enter /help for usage)", name))}
	}

	if err != nil {
		logging.Debug(commandSubsystem, "Command %q failed: %v", command, err)
		return []styledLine{errorOutput(err.Error())}
	}
	return output
}

func helpOutput() []styledLine {
	lines := make([]styledLine, 0, len(commandHelp))
	for _, h := range commandHelp {
		lines = append(lines, styledLine{
			text(fmt.Sprintf("%-13s", h.command), screen.Magenta, screen.Bold),
			text(h.description, screen.Blue),
		})
	}
	return lines
}

func (p *CommandPanel) historyOutput() []styledLine {
	lines := make([]styledLine, 0, len(p.history))
	for i, command := range p.history {
		lines = append(lines, styledLine{
			text(fmt.Sprintf("%3d  ", i+1), screen.Yellow, screen.Bold),
			text(command, screen.Blue),
		})
	}
	return lines
}

func (p *CommandPanel) nodesOutput(ctx context.Context) ([]styledLine, error) {
	if p.clientset == nil {
		return nil, errNotConnected
	}

	nodes, err := kube.ListNodes(ctx, p.clientset)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return []styledLine{{text("No nodes found", screen.Blue)}}, nil
	}

	rows := renderNodeTable(nodes, p.now())
	lines := make([]styledLine, 0, len(rows)+1)
	for i, row := range rows {
		attr := screen.Blue
		if i == 0 {
			attr = screen.Bold
		}
		lines = append(lines, styledLine{text(strings.TrimRight(row, " "), attr)})
	}

	health := kube.Health(nodes)
	lines = append(lines, styledLine{
		text(fmt.Sprintf("%d of %d nodes ready", health.ReadyNodes, health.TotalNodes), screen.Blue),
	})
	return lines, nil
}

func (p *CommandPanel) nodeOutput(ctx context.Context, name string) ([]styledLine, error) {
	if name == "" {
		return nil, errors.New("usage: node <name>")
	}
	if p.clientset == nil {
		return nil, errNotConnected
	}

	node, err := kube.GetNode(ctx, p.clientset, name)
	if errors.Is(err, kube.ErrNodeNotFound) {
		return nil, fmt.Errorf("no node named %s", name)
	}
	if err != nil {
		return nil, err
	}

	conditions := "no pressure"
	if len(node.Pressure) > 0 {
		conditions = strings.Join(node.Pressure, ", ")
	}

	now := p.now()
	return []styledLine{
		detailOutput("name", node.Name),
		detailOutput("status", node.Status()),
		detailOutput("roles", node.RoleList()),
		detailOutput("address", orNone(node.InternalIP)),
		detailOutput("provider", node.Provider),
		detailOutput("kubelet", orNone(node.KubeletVersion)),
		detailOutput("capacity", fmt.Sprintf("%s cpu, %s memory", orNone(node.CPU), orNone(node.Memory))),
		detailOutput("created", fmt.Sprintf("%s (%s ago)", node.Created.Format("2006-01-02 15:04"), age(node.Created, now))),
		detailOutput("conditions", conditions),
	}, nil
}

func (p *CommandPanel) versionOutput() ([]styledLine, error) {
	if p.clientset == nil {
		return nil, errNotConnected
	}

	version, err := kube.ServerVersion(p.clientset)
	if err != nil {
		return nil, err
	}
	return []styledLine{detailOutput("server", version)}, nil
}

func (p *CommandPanel) contextsOutput() ([]styledLine, error) {
	contexts, err := kube.GetAvailableContexts()
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return []styledLine{{text("No contexts in the kubeconfig", screen.Blue)}}, nil
	}

	lines := make([]styledLine, 0, len(contexts))
	for _, name := range contexts {
		if name == p.contextName {
			lines = append(lines, styledLine{text("* "+name, screen.Blue, screen.Bold)})
		} else {
			lines = append(lines, styledLine{text("  "+name, screen.Blue)})
		}
	}
	return lines, nil
}

func detailOutput(label, value string) styledLine {
	return styledLine{
		text(fmt.Sprintf("%-12s", label+":"), screen.Bold),
		text(value, screen.Blue),
	}
}

func errorOutput(msg string) styledLine {
	return styledLine{text(msg, screen.Red, screen.Bold)}
}

// formatInput styles a command the way it was entered: interpreter commands
// in magenta, otherwise the command in green and its argument in cyan.
func formatInput(command string) styledLine {
	line := styledLine{text(commandPrompt, screen.Green, screen.Bold)}
	if strings.HasPrefix(command, "/") {
		return append(line, text(command, screen.Magenta, screen.Bold))
	}

	name, arg, found := strings.Cut(command, " ")
	if !found {
		return append(line, text(name, screen.Green, screen.Bold))
	}
	return append(line,
		text(name+" ", screen.Green, screen.Bold),
		text(arg, screen.Cyan, screen.Bold),
	)
}

// promptLine is the last line: usage while idle, otherwise the command being
// entered with the cursor highlighted.
func (p *CommandPanel) promptLine() styledLine {
	line := styledLine{text(commandPrompt, screen.Green, screen.Bold)}
	if !p.inputMode {
		return append(line, text(commandUsage, screen.Cyan, screen.Bold))
	}

	value := []rune(p.input.Value())
	pos := min(p.input.Position(), len(value))
	cursor := " "
	after := ""
	if pos < len(value) {
		cursor = string(value[pos])
		after = string(value[pos+1:])
	}
	return append(line,
		text(string(value[:pos])),
		text(cursor, screen.Highlight),
		text(after),
	)
}

func (p *CommandPanel) lines() []styledLine {
	lines := make([]styledLine, 0, len(p.backlog)+1)
	lines = append(lines, p.backlog...)
	return append(lines, p.promptLine())
}

func (p *CommandPanel) scroll(k screen.KeyInput) {
	contentHeight := len(p.backlog) + 1
	pageHeight, _ := scrollLayout(contentHeight, p.Height())
	p.scroller.HandleKey(k, contentHeight, pageHeight)
}

func (p *CommandPanel) scrollToEnd() {
	p.scroll(screen.NewKeyInput("end"))
}

func (p *CommandPanel) title() string {
	if p.inputMode {
		return `Command Prompt (enter "/help" for usage or a blank line to stop):`
	}
	return "Command Prompt:"
}

// Draw renders the output so far, followed by the prompt.
func (p *CommandPanel) Draw(sw *screen.Subwindow) {
	sw.AddStr(0, 0, p.title(), screen.Bold)

	lines := p.lines()
	pageHeight, x := scrollLayout(len(lines), sw.Height)
	scroll := p.scroller.LocationWithin(len(lines), pageHeight)
	if x > 0 {
		sw.Scrollbar(1, scroll, len(lines))
	}

	for i := 0; i < pageHeight && scroll+i < len(lines); i++ {
		lines[scroll+i].draw(sw, x, 1+i)
	}
}
