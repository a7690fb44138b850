// Package ui is the interactive schematic viewer: a Gio application
// that renders one sheet at a time, supports pan/zoom, hierarchy
// navigation, and interactive placement with grid-snapped commits.
package ui

import (
	"fmt"
	"os"
	"strings"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/charmbracelet/log"
	"github.com/oligo/gioview/menu"
	gvtheme "github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/OpenTraceLab/OpenTraceSchem/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/glyph"
	autolayout "github.com/OpenTraceLab/OpenTraceSchem/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/render"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/schematic"
	"github.com/OpenTraceLab/OpenTraceSchem/pkg/symbol"
)

// dragThreshold is the pixel movement below which a press-release pair
// is a click, not a move.
const dragThreshold = 4.0

// Options configures the viewer.
type Options struct {
	DocumentPath string
	CatalogPath  string
	// TuningSnapshot is an optional TOML override file, a development
	// aid; leaving it empty keeps rendering deterministic.
	TuningSnapshot string
	Theme          render.Theme
	Logger         *log.Logger
	// OnSourceRef is called when the selection lands on an item that
	// carries a source reference. The viewer forwards the reference
	// verbatim and never resolves it.
	OnSourceRef func(ref schematic.SourceRef)
}

// Viewer is the application state. All mutation happens on the UI
// event loop.
type Viewer struct {
	window   *app.Window
	theme    *material.Theme
	gvTheme  *gvtheme.Theme
	explorer *explorer.Explorer
	logger   *log.Logger

	doc     *schematic.Document
	docPath string
	catalog *symbol.Catalog
	store   *glyph.TuningStore

	camera     *render.Camera
	colorTheme render.Theme
	colors     *render.Colors
	emitter    *render.Emitter

	sheetPath  string
	ports      []*schematic.Port
	powerPorts []*schematic.PowerPort

	selection   string
	onSourceRef func(ref schematic.SourceRef)

	// Two-phase drag: transient ungridded position during the drag,
	// snapped commit on release.
	dragItem   string
	dragOrigin schematic.Position
	dragPos    schematic.Position
	dragStart  f32.Point
	dragMoved  bool

	panning     bool
	lastPointer f32.Point

	openBtn  widget.Clickable
	fitBtn   widget.Clickable
	upBtn    widget.Clickable
	themeBtn widget.Clickable

	themeMenu *menu.DropdownMenu
	upIcon    *widget.Icon
	openIcon  *widget.Icon
}

// Run opens the viewer window and blocks until it closes.
func Run(opts Options) error {
	v := &Viewer{
		theme:      material.NewTheme(),
		logger:     opts.Logger,
		store:      glyph.NewTuningStore(),
		camera:     render.NewCamera(1200, 800),
		colorTheme:  opts.Theme,
		sheetPath:   "/",
		onSourceRef: opts.OnSourceRef,
	}
	if v.logger == nil {
		v.logger = log.New(os.Stderr)
	}
	v.theme.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	v.gvTheme = gvtheme.NewTheme("", nil, opts.Theme == render.ThemeDark)
	v.colors = render.ThemeColors(v.colorTheme)
	v.themeMenu = v.buildThemeMenu()

	if icon, err := widget.NewIcon(icons.NavigationArrowUpward); err == nil {
		v.upIcon = icon
	}
	if icon, err := widget.NewIcon(icons.FileFolderOpen); err == nil {
		v.openIcon = icon
	}

	if opts.CatalogPath != "" {
		cat, err := symbol.LoadCatalogFile(opts.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load symbol catalog: %w", err)
		}
		v.catalog = cat
	}
	if opts.TuningSnapshot != "" {
		if err := v.store.LoadSnapshot(opts.TuningSnapshot); err != nil {
			v.logger.Warn("tuning snapshot not loaded", "err", err)
		}
	}
	v.emitter = render.NewEmitter(v.catalog, v.store, v.colors)

	if opts.DocumentPath != "" {
		if err := v.loadDocument(opts.DocumentPath); err != nil {
			return err
		}
	}

	go func() {
		w := new(app.Window)
		w.Option(app.Title("OpenTraceSchem"))
		w.Option(app.Size(unit.Dp(1200), unit.Dp(800)))
		v.window = w
		v.explorer = explorer.NewExplorer(w)
		if err := v.loop(w); err != nil {
			v.logger.Fatal("viewer terminated", "err", err)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}

func (v *Viewer) loop(w *app.Window) error {
	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := layout.Context{
				Ops:         &ops,
				Constraints: layout.Exact(e.Size),
				Metric:      e.Metric,
				Now:         e.Now,
				Source:      e.Source,
			}
			v.camera.UpdateScreenSize(e.Size.X, e.Size.Y)
			v.handleInput(gtx)
			v.layoutUI(gtx)
			e.Frame(&ops)
		}
	}
}

// loadDocument parses the build document, lays out anything without a
// persisted position, and fits the view.
func (v *Viewer) loadDocument(path string) error {
	doc, err := schematic.LoadDocument(path)
	if err != nil {
		return err
	}
	v.doc = doc
	v.docPath = path
	v.sheetPath = "/"
	v.selection = ""
	v.enterSheet()

	v.logger.Info("document loaded", "path", path,
		"components", len(doc.Root.Components),
		"modules", len(doc.Root.Modules),
		"nets", len(doc.Root.Nets))
	return nil
}

// enterSheet re-derives the port views for the current sheet and runs
// the auto-layout for items without a persisted position.
func (v *Viewer) enterSheet() {
	sheet := v.currentSheet()
	if sheet == nil {
		return
	}

	v.ports, v.powerPorts = schematic.DeriveViews(sheet, v.currentInterface())

	computed := autolayout.Run(sheet, v.ports, v.powerPorts)
	for key, pos := range computed.Positions {
		if _, ok := v.doc.Positions[key]; !ok {
			v.doc.Positions[key] = pos
		}
	}
	for key, order := range computed.PortSignalOrders {
		if _, ok := v.doc.PortSignalOrders[key]; !ok {
			v.doc.PortSignalOrders[key] = order
		}
	}

	v.fitToView()
}

func (v *Viewer) currentSheet() *schematic.Sheet {
	if v.doc == nil {
		return nil
	}
	return v.doc.SheetByPath(v.sheetPath)
}

// currentInterface returns the interface pins of the module wrapping
// the current sheet, nil at the root.
func (v *Viewer) currentInterface() []schematic.InterfacePin {
	if v.doc == nil || v.sheetPath == "/" {
		return nil
	}
	segments := strings.Split(strings.Trim(v.sheetPath, "/"), "/")
	sheet := v.doc.Root
	for i, seg := range segments {
		mod := sheet.ModuleByID(seg)
		if mod == nil {
			return nil
		}
		if i == len(segments)-1 {
			return mod.Interface
		}
		sheet = mod.Sheet
	}
	return nil
}

func (v *Viewer) enterModule(id string) {
	sheet := v.currentSheet()
	if sheet == nil || sheet.ModuleByID(id) == nil {
		return
	}
	v.sheetPath = v.sheetPath + id + "/"
	v.selection = ""
	v.enterSheet()
	v.window.Invalidate()
}

func (v *Viewer) goUp() {
	if v.sheetPath == "/" {
		return
	}
	trimmed := strings.TrimSuffix(v.sheetPath, "/")
	idx := strings.LastIndex(trimmed, "/")
	v.sheetPath = trimmed[:idx+1]
	v.selection = ""
	v.enterSheet()
	v.window.Invalidate()
}

// positionFor returns the effective position of an item: the transient
// drag position while it is being dragged, the persisted one
// otherwise.
func (v *Viewer) positionFor(itemID string) schematic.Position {
	if v.dragItem == itemID {
		return v.dragPos
	}
	return v.doc.Positions[schematic.PositionKey(v.sheetPath, itemID)]
}

// commitDrag snaps the dragged position onto the grid, stores it, and
// merge-writes the overlay. A write failure is logged and the
// in-memory state stays good.
func (v *Viewer) commitDrag() {
	pos := v.dragPos
	pos.X = geom.Snap(pos.X)
	pos.Y = geom.Snap(pos.Y)
	pos.Rotation = geom.NormalizeRotation(pos.Rotation)
	v.doc.Positions[schematic.PositionKey(v.sheetPath, v.dragItem)] = pos
	v.persist()
}

func (v *Viewer) persist() {
	if v.docPath == "" {
		return
	}
	if err := schematic.MergeWriteOverlay(v.docPath, v.doc); err != nil {
		v.logger.Error("layout overlay write failed", "err", err)
	}
}

// rotateSelection turns the selected item by 90 degrees and commits.
func (v *Viewer) rotateSelection() {
	if v.selection == "" {
		return
	}
	key := schematic.PositionKey(v.sheetPath, v.selection)
	pos := v.doc.Positions[key]
	pos.Rotation = geom.NormalizeRotation(pos.Rotation + 90)
	v.doc.Positions[key] = pos
	v.persist()
	v.window.Invalidate()
}

// mirrorSelection toggles the horizontal mirror of the selected item.
func (v *Viewer) mirrorSelection() {
	if v.selection == "" {
		return
	}
	key := schematic.PositionKey(v.sheetPath, v.selection)
	pos := v.doc.Positions[key]
	pos.MirrorX = !pos.MirrorX
	v.doc.Positions[key] = pos
	v.persist()
	v.window.Invalidate()
}

func (v *Viewer) toggleTheme() {
	if v.colorTheme == render.ThemeLight {
		v.setTheme(render.ThemeDark)
	} else {
		v.setTheme(render.ThemeLight)
	}
}

func (v *Viewer) setTheme(t render.Theme) {
	v.colorTheme = t
	v.colors = render.ThemeColors(t)
	v.emitter = render.NewEmitter(v.catalog, v.store, v.colors)
	v.window.Invalidate()
}

func (v *Viewer) buildThemeMenu() *menu.DropdownMenu {
	themes := []render.Theme{render.ThemeLight, render.ThemeDark}
	opts := make([]menu.MenuOption, 0, len(themes))
	for _, t := range themes {
		choice := t
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				v.setTheme(choice)
				return nil
			},
			Layout: func(gtx menu.C, th *gvtheme.Theme) menu.D {
				lbl := material.Body1(th.Theme, choice.String())
				if choice == v.colorTheme {
					lbl.Color = th.Palette.ContrastBg
				}
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(160)
	return drop
}

func (v *Viewer) fitToView() {
	sheet := v.currentSheet()
	if sheet == nil {
		return
	}

	b := geom.NewBounds()
	for _, c := range sheet.Components {
		pos := v.positionFor(c.ID)
		half := r2.Vec{X: c.BodyWidth/2 + geom.GridPitch, Y: c.BodyHeight/2 + geom.GridPitch}
		b.Expand(r2.Sub(pos.Vec(), half))
		b.Expand(r2.Add(pos.Vec(), half))
	}
	for _, m := range sheet.Modules {
		pos := v.positionFor(m.ID)
		w, h := render.ModuleSize(m)
		half := r2.Vec{X: w / 2, Y: h / 2}
		b.Expand(r2.Sub(pos.Vec(), half))
		b.Expand(r2.Add(pos.Vec(), half))
	}
	for _, p := range v.ports {
		pos := v.positionFor(p.ID)
		b.Expand(pos.Vec())
	}
	if b.IsEmpty() {
		return
	}
	v.camera.Fit(b)
	if v.window != nil {
		v.window.Invalidate()
	}
}

func (v *Viewer) openFilePicker() {
	go func() {
		file, err := v.explorer.ChooseFile("")
		if err != nil {
			if err != explorer.ErrUserDecline {
				v.logger.Warn("file picker failed", "err", err)
			}
			return
		}
		defer file.Close()

		if f, ok := file.(*os.File); ok {
			if err := v.loadDocument(f.Name()); err != nil {
				v.logger.Error("document load failed", "path", f.Name(), "err", err)
				return
			}
			v.window.Invalidate()
		}
	}()
}
