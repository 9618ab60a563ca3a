package headless

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/webinterop/internal/browser"
)

// Document is a lightweight element tree.
type Document struct {
	mu   sync.RWMutex
	root *Element
}

// Element is a node of a Document.
type Element struct {
	Tag        string
	Class      string
	Text       string
	Attributes map[string]string
	Children   []*Element
	Parent     *Element

	id string
}

var _ browser.Element = (*Element)(nil)

// NewElement creates a detached element.
func NewElement(tag, id string) *Element {
	return &Element{Tag: tag, id: id, Attributes: make(map[string]string)}
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// GetAttribute returns an attribute value.
func (e *Element) GetAttribute(name string) string {
	return e.Attributes[name]
}

// SetAttribute sets an attribute value.
func (e *Element) SetAttribute(name, value string) {
	e.Attributes[name] = value
}

// AddElement appends child.
func (e *Element) AddElement(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.Parent == nil {
		return
	}
	children := e.Parent.Children[:0]
	for _, child := range e.Parent.Children {
		if child != e {
			children = append(children, child)
		}
	}
	e.Parent.Children = children
	e.Parent = nil
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{root: NewElement("document", "")}
}

// Root returns the document node.
func (d *Document) Root() *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root
}

// Add appends a div with the given id to the document and returns it.
func (d *Document) Add(id string) *Element {
	e := NewElement("div", id)
	d.mu.Lock()
	d.root.AddElement(e)
	d.mu.Unlock()
	return e
}

// RemoveByID detaches the element with id and reports whether it existed.
func (d *Document) RemoveByID(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e := findByID(d.root, id)
	if e == nil || e == d.root {
		return false
	}
	e.Remove()
	return true
}

// GetElementByID finds an element by id.
func (d *Document) GetElementByID(id string) (browser.Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id == "" {
		return nil, false
	}
	if e := findByID(d.root, id); e != nil {
		return e, true
	}
	return nil, false
}

// Query finds elements by a simple selector: #id, .class or a tag name.
func (d *Document) Query(selector string) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch {
	case strings.HasPrefix(selector, "#"):
		if e := findByID(d.root, strings.TrimPrefix(selector, "#")); e != nil {
			return []*Element{e}
		}
		return nil
	case strings.HasPrefix(selector, "."):
		return findByClass(d.root, strings.TrimPrefix(selector, "."))
	default:
		return findByTag(d.root, selector)
	}
}

// LoadHTML replaces the document body with the elements parsed from r.
func (d *Document) LoadHTML(r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := NewElement("document", "")
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		root.AddElement(convert(s))
	})

	d.mu.Lock()
	d.root = root
	d.mu.Unlock()
	return nil
}

func convert(s *goquery.Selection) *Element {
	id, _ := s.Attr("id")
	e := NewElement(goquery.NodeName(s), id)
	e.Class, _ = s.Attr("class")
	for _, n := range s.Nodes {
		for _, a := range n.Attr {
			e.Attributes[a.Key] = a.Val
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				e.Text += strings.TrimSpace(c.Data)
			}
		}
	}
	s.Children().Each(func(_ int, child *goquery.Selection) {
		e.AddElement(convert(child))
	})
	return e
}

func findByID(e *Element, id string) *Element {
	if e.id == id {
		return e
	}
	for _, child := range e.Children {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func findByClass(e *Element, class string) []*Element {
	var result []*Element
	for _, c := range strings.Fields(e.Class) {
		if c == class {
			result = append(result, e)
			break
		}
	}
	for _, child := range e.Children {
		result = append(result, findByClass(child, class)...)
	}
	return result
}

func findByTag(e *Element, tag string) []*Element {
	var result []*Element
	if strings.EqualFold(e.Tag, tag) {
		result = append(result, e)
	}
	for _, child := range e.Children {
		result = append(result, findByTag(child, tag)...)
	}
	return result
}
