package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/observer"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

const missingIDList = "Observer.addResizer - missing id list."

type observerModule struct {
	host    *Host
	factory ResizeObserverFactory
	doc     Document
	console Console
	log     *moduleLogger

	mu       sync.Mutex
	observer ResizeObserver
	ref      *HostRef
	callback string
}

func newObserverModule(h *Host, p Platform) *observerModule {
	return &observerModule{
		host:    h,
		factory: p.ResizeObservers,
		doc:     p.Document,
		console: p.Console,
		log:     newModuleLogger(p.Console),
	}
}

func (o *observerModule) Namespace() interop.Namespace { return interop.NamespaceObserver }

func (o *observerModule) Invoke(ctx context.Context, method string, args interop.Args) (any, error) {
	switch method {
	case "setLogLevel":
		var level int
		if _, err := decodeArg(args, 0, "level", &level); err != nil {
			return nil, err
		}
		o.log.setLevel(interop.LogLevel(level))
		return nil, nil

	case "addResizers":
		var ref wire.ObjectHandle
		var ids []string
		var callback string
		if _, err := decodeArg(args, 0, "ref", &ref); err != nil {
			return nil, err
		}
		hasIDs, err := decodeArg(args, 1, "ids", &ids)
		if err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 2, "callbackMethod", &callback); err != nil {
			return nil, err
		}
		if callback == "" {
			callback = observer.NotifyResizedMethod
		}
		o.addResizers(o.host.Ref(ref), ids, hasIDs, callback)
		return nil, nil

	case "removeResizers":
		var ids []string
		if _, err := decodeArg(args, 0, "ids", &ids); err != nil {
			return nil, err
		}
		o.removeResizers(ids)
		return nil, nil

	case "disconnectResizers":
		o.disconnect()
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", interop.ErrUnknownIdentifier, interop.MethodName(o.Namespace(), method))
}

// initialize creates the shared observer on first use. The reference and
// callback of that first call receive every notification until disconnect.
func (o *observerModule) initialize(ref *HostRef, callback string) ResizeObserver {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.observer != nil {
		return o.observer
	}
	if o.factory == nil {
		o.log.log(interop.LevelWarning, "Resize observer not supported!")
		return nil
	}
	o.ref, o.callback = ref, callback
	o.observer = o.factory.NewResizeObserver(o.onResize)
	return o.observer
}

func (o *observerModule) addResizers(ref *HostRef, ids []string, hasIDs bool, callback string) {
	obs := o.initialize(ref, callback)
	if obs == nil {
		return
	}
	if !hasIDs {
		if o.console != nil {
			o.console.Warn(missingIDList)
		}
		o.log.log(interop.LevelWarning, missingIDList)
		return
	}

	for _, id := range ids {
		elem, ok := o.element(id)
		if !ok {
			o.log.log(interop.LevelWarning, fmt.Sprintf("Element where id = '%s' does not exist and will not be observed.", id))
			continue
		}
		obs.Observe(elem)
	}
}

func (o *observerModule) removeResizers(ids []string) {
	o.mu.Lock()
	obs := o.observer
	o.mu.Unlock()
	if obs == nil {
		return
	}

	for _, id := range ids {
		elem, ok := o.element(id)
		if !ok {
			o.log.log(interop.LevelWarning, fmt.Sprintf("Element where id = '%s' does not exist and will not be unobserved. ", id))
			continue
		}
		obs.Unobserve(elem)
	}
}

func (o *observerModule) disconnect() {
	o.mu.Lock()
	obs := o.observer
	o.observer, o.ref, o.callback = nil, nil, ""
	o.mu.Unlock()

	if obs == nil {
		return
	}
	obs.Disconnect()
	o.log.log(interop.LevelTrace, "disconnectResizers was called.")
}

func (o *observerModule) element(id string) (Element, bool) {
	if o.doc == nil {
		return nil, false
	}
	return o.doc.GetElementByID(id)
}

// onResize reports each element of a batch once, with its last size, in
// the order elements first appear.
func (o *observerModule) onResize(entries []ResizeEntry) {
	o.mu.Lock()
	ref, callback := o.ref, o.callback
	o.mu.Unlock()
	if ref == nil {
		return
	}

	var order []string
	latest := make(map[string]observer.ResizeEvent, len(entries))
	for _, entry := range entries {
		if entry.Target == nil {
			continue
		}
		id := entry.Target.ID()
		if _, seen := latest[id]; !seen {
			order = append(order, id)
		}
		width, height := entry.Size()
		latest[id] = observer.ResizeEvent{ID: id, Width: width, Height: height}
	}

	for _, id := range order {
		e := latest[id]
		o.log.log(interop.LevelTrace, fmt.Sprintf("Observer callbackMethod = '%s'", callback), e)
		ref.notify(callback, e)
	}
}
