package loader

import "github.com/dhamidi/classreader/classfile"

// LoadEvent describes one step of a load session. Group is the innermost
// open group; Size is only set on BeginGroup. Classfile and Err are only
// set on EndClassfile, and never both.
type LoadEvent struct {
	Group     string
	Filename  string
	Size      int
	Classfile *classfile.ClassFile
	Err       error
}

// LoadListener receives events synchronously and in order:
//
//	BeginSession
//	  BeginGroup
//	    BeginFile [BeginClassfile EndClassfile | nested group] EndFile
//	  EndGroup
//	EndSession
type LoadListener interface {
	BeginSession(e LoadEvent)
	BeginGroup(e LoadEvent)
	BeginFile(e LoadEvent)
	BeginClassfile(e LoadEvent)
	EndClassfile(e LoadEvent)
	EndFile(e LoadEvent)
	EndGroup(e LoadEvent)
	EndSession(e LoadEvent)
}

// BaseLoadListener ignores every event. Embed it to implement only some of
// LoadListener.
type BaseLoadListener struct{}

var _ LoadListener = BaseLoadListener{}

func (BaseLoadListener) BeginSession(LoadEvent)   {}
func (BaseLoadListener) BeginGroup(LoadEvent)     {}
func (BaseLoadListener) BeginFile(LoadEvent)      {}
func (BaseLoadListener) BeginClassfile(LoadEvent) {}
func (BaseLoadListener) EndClassfile(LoadEvent)   {}
func (BaseLoadListener) EndFile(LoadEvent)        {}
func (BaseLoadListener) EndGroup(LoadEvent)       {}
func (BaseLoadListener) EndSession(LoadEvent)     {}

// MultiListener forwards each event to every listener in order.
type MultiListener []LoadListener

var _ LoadListener = MultiListener(nil)

func (m MultiListener) BeginSession(e LoadEvent) {
	for _, l := range m {
		l.BeginSession(e)
	}
}

func (m MultiListener) BeginGroup(e LoadEvent) {
	for _, l := range m {
		l.BeginGroup(e)
	}
}

func (m MultiListener) BeginFile(e LoadEvent) {
	for _, l := range m {
		l.BeginFile(e)
	}
}

func (m MultiListener) BeginClassfile(e LoadEvent) {
	for _, l := range m {
		l.BeginClassfile(e)
	}
}

func (m MultiListener) EndClassfile(e LoadEvent) {
	for _, l := range m {
		l.EndClassfile(e)
	}
}

func (m MultiListener) EndFile(e LoadEvent) {
	for _, l := range m {
		l.EndFile(e)
	}
}

func (m MultiListener) EndGroup(e LoadEvent) {
	for _, l := range m {
		l.EndGroup(e)
	}
}

func (m MultiListener) EndSession(e LoadEvent) {
	for _, l := range m {
		l.EndSession(e)
	}
}
