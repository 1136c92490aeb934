// Package testdoc builds small HWP and HWPX documents in memory for tests.
package testdoc

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode/utf16"
)

const (
	sectorSize   = 512
	miniCutoff   = 4096
	dirEntrySize = 128

	noStream   = 0xFFFFFFFF
	endOfChain = 0xFFFFFFFE
	fatSect    = 0xFFFFFFFD
	freeSect   = 0xFFFFFFFF

	typeStorage = 1
	typeStream  = 2
	typeRoot    = 5
)

type cfbNode struct {
	name     string
	typ      byte
	data     []byte
	children []*cfbNode

	id    uint32
	right uint32
	start uint32
}

// CompoundFile builds a version 3 compound file holding streams keyed by
// slash separated path, e.g. "BodyText/Section0". Intermediate storages are
// created as needed. Streams shorter than the mini stream cutoff are padded
// with zero bytes so that every stream lives in regular sectors.
func CompoundFile(streams map[string][]byte) []byte {
	root := &cfbNode{name: "Root Entry", typ: typeRoot}

	paths := make([]string, 0, len(streams))
	for p := range streams {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		parts := strings.Split(p, "/")
		parent := root
		for _, dir := range parts[:len(parts)-1] {
			parent = parent.storage(dir)
		}
		data := streams[p]
		if len(data) < miniCutoff {
			padded := make([]byte, miniCutoff)
			copy(padded, data)
			data = padded
		}
		parent.children = append(parent.children, &cfbNode{
			name: parts[len(parts)-1],
			typ:  typeStream,
			data: data,
		})
	}

	var nodes []*cfbNode
	var walk func(n *cfbNode)
	walk = func(n *cfbNode) {
		n.id = uint32(len(nodes))
		nodes = append(nodes, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	for _, n := range nodes {
		n.right = noStream
	}
	for _, n := range nodes {
		// siblings form a chain through their right pointers
		for i := 0; i+1 < len(n.children); i++ {
			n.children[i].right = n.children[i+1].id
		}
	}

	dirSectors := (len(nodes)*dirEntrySize + sectorSize - 1) / sectorSize
	dataSectors := 0
	for _, n := range nodes {
		if n.typ == typeStream {
			dataSectors += sectorsFor(len(n.data))
		}
	}
	fatSectors := 1
	for fatSectors*(sectorSize/4) < fatSectors+dirSectors+dataSectors {
		fatSectors++
	}
	total := fatSectors + dirSectors + dataSectors

	fat := make([]uint32, fatSectors*(sectorSize/4))
	for i := range fat {
		fat[i] = freeSect
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = fatSect
	}
	chain := func(start, count int) {
		for i := 0; i < count-1; i++ {
			fat[start+i] = uint32(start + i + 1)
		}
		fat[start+count-1] = endOfChain
	}
	dirStart := fatSectors
	chain(dirStart, dirSectors)
	next := dirStart + dirSectors
	for _, n := range nodes {
		if n.typ != typeStream {
			n.start = endOfChain
			continue
		}
		count := sectorsFor(len(n.data))
		n.start = uint32(next)
		chain(next, count)
		next += count
	}

	out := make([]byte, sectorSize*(1+total))
	writeHeader(out[:sectorSize], fatSectors, dirStart)

	for i, v := range fat {
		binary.LittleEndian.PutUint32(out[sectorSize+i*4:], v)
	}

	dir := out[sectorSize*(1+dirStart):]
	for i := 0; i < dirSectors*sectorSize/dirEntrySize; i++ {
		e := dir[i*dirEntrySize : (i+1)*dirEntrySize]
		binary.LittleEndian.PutUint32(e[68:], noStream)
		binary.LittleEndian.PutUint32(e[72:], noStream)
		binary.LittleEndian.PutUint32(e[76:], noStream)
	}
	for _, n := range nodes {
		writeDirEntry(dir[int(n.id)*dirEntrySize:], n)
	}

	for _, n := range nodes {
		if n.typ == typeStream {
			copy(out[sectorSize*(1+int(n.start)):], n.data)
		}
	}
	return out
}

func (n *cfbNode) storage(name string) *cfbNode {
	for _, c := range n.children {
		if c.name == name && c.typ == typeStorage {
			return c
		}
	}
	s := &cfbNode{name: name, typ: typeStorage}
	n.children = append(n.children, s)
	return s
}

func sectorsFor(n int) int {
	return (n + sectorSize - 1) / sectorSize
}

func writeHeader(h []byte, fatSectors, dirStart int) {
	copy(h, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	binary.LittleEndian.PutUint16(h[24:], 0x003E)
	binary.LittleEndian.PutUint16(h[26:], 0x0003)
	binary.LittleEndian.PutUint16(h[28:], 0xFFFE)
	binary.LittleEndian.PutUint16(h[30:], 9)
	binary.LittleEndian.PutUint16(h[32:], 6)
	binary.LittleEndian.PutUint32(h[44:], uint32(fatSectors))
	binary.LittleEndian.PutUint32(h[48:], uint32(dirStart))
	binary.LittleEndian.PutUint32(h[56:], miniCutoff)
	binary.LittleEndian.PutUint32(h[60:], endOfChain)
	binary.LittleEndian.PutUint32(h[68:], endOfChain)
	for i := 0; i < 109; i++ {
		v := uint32(freeSect)
		if i < fatSectors {
			v = uint32(i)
		}
		binary.LittleEndian.PutUint32(h[76+i*4:], v)
	}
}

func writeDirEntry(e []byte, n *cfbNode) {
	name := utf16.Encode([]rune(n.name))
	for i, u := range name {
		binary.LittleEndian.PutUint16(e[i*2:], u)
	}
	binary.LittleEndian.PutUint16(e[64:], uint16((len(name)+1)*2))
	e[66] = n.typ
	e[67] = 1 // black

	binary.LittleEndian.PutUint32(e[68:], noStream)
	binary.LittleEndian.PutUint32(e[72:], n.right)
	child := uint32(noStream)
	if len(n.children) > 0 {
		child = n.children[0].id
	}
	binary.LittleEndian.PutUint32(e[76:], child)
	binary.LittleEndian.PutUint32(e[116:], n.start)
	binary.LittleEndian.PutUint32(e[120:], uint32(len(n.data)))
}
