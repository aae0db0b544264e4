package panels

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dashctl/internal/kube"
	"dashctl/internal/tui/panel"
	"dashctl/internal/tui/screen"
	"dashctl/pkg/logging"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/patrickmn/go-cache"
	"k8s.io/apimachinery/pkg/util/duration"
	"k8s.io/client-go/kubernetes"
)

const (
	nodesSubsystem = "NodesPanel"

	// the title and table header
	nodesChromeHeight = 2
	nodeDetailHeight  = 5

	serverVersionTTL = 10 * time.Minute
)

type nodeSort int

const (
	sortByName nodeSort = iota
	sortByStatus
	sortByAge
	sortByRole
)

var nodeSortNames = []string{"name", "status", "age", "role"}

func (s nodeSort) String() string {
	return nodeSortNames[s]
}

func (s nodeSort) next() nodeSort {
	return (s + 1) % nodeSort(len(nodeSortNames))
}

// NodesPanel lists the nodes of a Kubernetes cluster.
type NodesPanel struct {
	*panel.DaemonPanel

	clientset   kubernetes.Interface
	contextName string
	versions    *cache.Cache
	now         func() time.Time

	mu      sync.Mutex
	nodes   []kube.NodeInfo
	version string
	loaded  bool
	lastErr error
	order   nodeSort
	detail  bool
	cursor  screen.CursorScroller[string]
}

// NewNodesPanel creates a panel polling the cluster's nodes every interval.
func NewNodesPanel(display panel.Display, interval time.Duration, clientset kubernetes.Interface, contextName string) *NodesPanel {
	p := &NodesPanel{
		clientset:   clientset,
		contextName: contextName,
		versions:    cache.New(serverVersionTTL, 2*serverVersionTTL),
		now:         time.Now,
	}
	p.DaemonPanel = panel.NewDaemon(nodesSubsystem, display, p, p, interval)
	return p
}

// Update fetches the node list.
func (p *NodesPanel) Update(ctx context.Context) error {
	nodes, err := kube.ListNodes(ctx, p.clientset)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	version := p.serverVersion()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes = nodes
	p.version = version
	p.loaded = true
	p.lastErr = nil
	return nil
}

// serverVersion is cached since it rarely changes and costs a round trip.
func (p *NodesPanel) serverVersion() string {
	if cached, found := p.versions.Get(p.contextName); found {
		return cached.(string)
	}

	version, err := kube.ServerVersion(p.clientset)
	if err != nil {
		logging.Debug(nodesSubsystem, "Unable to get server version for %s: %v", p.contextName, err)
		return ""
	}
	p.versions.Set(p.contextName, version, cache.DefaultExpiration)
	return version
}

// KeyHandlers provides scrolling, node details and sort order.
func (p *NodesPanel) KeyHandlers() []panel.KeyHandler {
	p.mu.Lock()
	order, detail := p.order, p.detail
	p.mu.Unlock()

	detailDesc := "show node details"
	if detail {
		detailDesc = "hide node details"
	}

	return []panel.KeyHandler{
		panel.NewKeyHandler("arrows", "scroll up and down", panel.ActionWithKey(p.scroll),
			panel.WithKeyFunc(screen.KeyInput.IsScroll)),
		panel.NewKeyHandler("enter", detailDesc, panel.ActionNoArg(p.toggleDetail),
			panel.WithKeyFunc(screen.KeyInput.IsSelection)),
		panel.NewKeyHandler("s", "sort ordering", panel.ActionNoArg(p.cycleSort),
			panel.WithCurrent(order.String())),
	}
}

func (p *NodesPanel) scroll(k screen.KeyInput) {
	pageHeight := p.Height() - nodesChromeHeight

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.detail {
		pageHeight -= nodeDetailHeight
	}
	p.cursor.HandleKey(k, nodeNames(p.sorted()), max(1, pageHeight))
}

func (p *NodesPanel) toggleDetail() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detail = !p.detail
}

func (p *NodesPanel) cycleSort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = p.order.next()
}

// Selected is the name of the node under the cursor.
func (p *NodesPanel) Selected() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, _, ok := p.cursor.Selection(nodeNames(p.sorted()), 0)
	return name, ok
}

// sorted returns the nodes in display order. Caller must hold the lock.
func (p *NodesPanel) sorted() []kube.NodeInfo {
	nodes := append([]kube.NodeInfo(nil), p.nodes...)

	var less func(a, b kube.NodeInfo) bool
	switch p.order {
	case sortByStatus:
		// problems first
		less = func(a, b kube.NodeInfo) bool {
			return a.Ready != b.Ready && !a.Ready
		}
	case sortByAge:
		// newest first
		less = func(a, b kube.NodeInfo) bool {
			return a.Created.After(b.Created)
		}
	case sortByRole:
		less = func(a, b kube.NodeInfo) bool {
			return a.RoleList() < b.RoleList()
		}
	default:
		less = func(a, b kube.NodeInfo) bool {
			return a.Name < b.Name
		}
	}

	sort.SliceStable(nodes, func(i, j int) bool { return less(nodes[i], nodes[j]) })
	return nodes
}

func nodeNames(nodes []kube.NodeInfo) []string {
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Name
	}
	return names
}

// Draw renders the node table.
func (p *NodesPanel) Draw(sw *screen.Subwindow) {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes := p.sorted()
	health := kube.Health(nodes)

	title := fmt.Sprintf("Nodes (context: %s", p.contextName)
	if p.version != "" {
		title += ", server " + p.version
	}
	if p.loaded {
		title += fmt.Sprintf(", %d/%d ready", health.ReadyNodes, health.TotalNodes)
	}
	sw.AddStr(0, 0, title+"):", screen.Bold)

	switch {
	case p.lastErr != nil && !p.loaded:
		sw.AddStrWrap(0, 1, "Unable to list nodes: "+p.lastErr.Error(), sw.Width, 0, screen.Red)
		return
	case !p.loaded:
		sw.AddStr(0, 1, "Loading nodes...")
		return
	case len(nodes) == 0:
		sw.AddStr(0, 1, "No nodes found")
		return
	}

	detailHeight := 0
	if p.detail {
		detailHeight = nodeDetailHeight
	}
	pageHeight := max(0, sw.Height-nodesChromeHeight-detailHeight)

	selected, scroll, _ := p.cursor.Selection(nodeNames(nodes), pageHeight)
	lines := renderNodeTable(nodes, p.now())

	sw.AddStr(0, 1, lines[0], screen.Bold)
	for i := 0; i < pageHeight && scroll+i < len(nodes); i++ {
		node := nodes[scroll+i]

		var attrs []screen.Attr
		if !node.Ready {
			attrs = append(attrs, screen.Red)
		} else if len(node.Pressure) > 0 {
			attrs = append(attrs, screen.Yellow)
		}
		if node.Name == selected {
			attrs = append(attrs, screen.Highlight)
		}
		sw.AddStr(0, nodesChromeHeight+i, lines[1+scroll+i], attrs...)
	}

	if p.detail {
		for _, node := range nodes {
			if node.Name == selected {
				drawNodeDetail(sw, node, sw.Height-nodeDetailHeight, p.now())
				break
			}
		}
	}
}

// renderNodeTable lays out the nodes as aligned columns. The first line is
// the header, followed by a line per node.
func renderNodeTable(nodes []kube.NodeInfo, now time.Time) []string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateHeader = false
	t.Style().Box.PaddingLeft = ""
	t.Style().Box.PaddingRight = "  "

	t.AppendHeader(table.Row{"Name", "Status", "Roles", "Age", "Version", "Provider"})
	for _, node := range nodes {
		t.AppendRow(table.Row{
			node.Name,
			node.Status(),
			node.RoleList(),
			age(node.Created, now),
			node.KubeletVersion,
			node.Provider,
		})
	}
	return strings.Split(t.Render(), "\n")
}

func drawNodeDetail(sw *screen.Subwindow, node kube.NodeInfo, top int, now time.Time) {
	sw.Box(0, top, 0, nodeDetailHeight)
	sw.AddStr(2, top, " "+node.Name+" ", screen.Bold)

	x := sw.AddStr(2, top+1, "address: ", screen.Bold)
	x = sw.AddStr(x, top+1, orNone(node.InternalIP))
	x = sw.AddStr(x, top+1, "  provider: ", screen.Bold)
	x = sw.AddStr(x, top+1, node.Provider)
	x = sw.AddStr(x, top+1, "  kubelet: ", screen.Bold)
	sw.AddStr(x, top+1, orNone(node.KubeletVersion))

	x = sw.AddStr(2, top+2, "capacity: ", screen.Bold)
	x = sw.AddStr(x, top+2, fmt.Sprintf("%s cpu, %s memory", orNone(node.CPU), orNone(node.Memory)))
	x = sw.AddStr(x, top+2, "  created: ", screen.Bold)
	sw.AddStr(x, top+2, fmt.Sprintf("%s (%s ago)", node.Created.Format("2006-01-02 15:04"), age(node.Created, now)))

	x = sw.AddStr(2, top+3, "conditions: ", screen.Bold)
	if len(node.Pressure) == 0 {
		sw.AddStr(x, top+3, "no pressure", screen.Green)
	} else {
		sw.AddStr(x, top+3, strings.Join(node.Pressure, ", "), screen.Yellow)
	}
}

func age(created, now time.Time) string {
	if created.IsZero() {
		return "<unknown>"
	}
	return duration.HumanDuration(now.Sub(created))
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
