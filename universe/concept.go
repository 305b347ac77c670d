package universe

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Concept types that are not also storage or asset type names.
const (
	ConceptUniverse       = "Universe"
	ConceptUser           = "User"
	ConceptUserGroup      = "UserGroup"
	ConceptRoleBinding    = "RoleBinding"
	ConceptEndpointConfig = "EndpointConfig"
	ConceptDataSet        = "DataSet"
	ConceptDatumTemplate  = "DatumTemplate"
	ConceptAttribute      = "Attribute"
	ConceptLayout         = "Layout"
	ConceptCompression    = "Compression"
	ConceptHeader         = "Header"
)

// conceptNamespace seeds every concept UUID.
var conceptNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/relloyd/aorist/concept"))

// Node is one concept in the universe tree.
// Type is the concept type, e.g. "DataSet" or "ReplicationStorageSetup".
// Name is empty for concepts that are identified by position alone.
// Object holds the configuration record the node was built from.
type Node struct {
	Type     string
	Name     string
	Object   interface{}
	Parent   *Node
	Children []*Node
	UUID     uuid.UUID
}

func (n *Node) add(typ, name string, obj interface{}) *Node {
	c := &Node{Type: typ, Name: name, Object: obj, Parent: n}
	n.Children = append(n.Children, c)
	return c
}

// Ancestors returns the chain of ancestors of n starting at the root. n is not included.
func (n *Node) Ancestors() []*Node {
	retval := make([]*Node, 0)
	for p := n.Parent; p != nil; p = p.Parent {
		retval = append([]*Node{p}, retval...)
	}
	return retval
}

// NearestAncestor returns the closest ancestor of n with concept type typ, or nil.
func (n *Node) NearestAncestor(typ string) *Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == typ {
			return p
		}
	}
	return nil
}

// Descendants returns every node below n in depth-first order. n is not included.
func (n *Node) Descendants() []*Node {
	retval := make([]*Node, 0)
	_ = Walk(n, func(c *Node) error {
		if c != n {
			retval = append(retval, c)
		}
		return nil
	})
	return retval
}

// Path renders the names of n and its named ancestors, e.g. "my_cluster/wine/wine_table".
func (n *Node) Path() string {
	parts := make([]string, 0)
	for _, a := range append(n.Ancestors(), n) {
		if a.Name != "" {
			parts = append(parts, a.Name)
		}
	}
	return strings.Join(parts, "/")
}

// ErrSkipChildren may be returned by a WalkFunc to avoid visiting the children of a node.
var ErrSkipChildren = errors.New("skip children")

// Walk visits root and its descendants depth-first, parents before children, children
// in declaration order. It stops at the first error returned by fn.
func Walk(root *Node, fn func(*Node) error) error {
	if err := fn(root); err != nil {
		if err == ErrSkipChildren {
			return nil
		}
		return err
	}
	for _, c := range root.Children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Find returns every node of type typ under root, including root, in walk order.
func Find(root *Node, typ string) []*Node {
	retval := make([]*Node, 0)
	_ = Walk(root, func(n *Node) error {
		if n.Type == typ {
			retval = append(retval, n)
		}
		return nil
	})
	return retval
}

// ComputeUUIDs assigns a deterministic UUID to n and every node below it.
// Leaf UUIDs hash the concept type and the JSON form of the object.
// Inner UUIDs hash the concept type, name and the sorted UUIDs of the children,
// so identical declarations always yield identical UUIDs.
func (n *Node) ComputeUUIDs() {
	if len(n.Children) == 0 {
		b, err := json.Marshal(n.Object)
		if err != nil {
			b = []byte(n.Name)
		}
		n.UUID = uuid.NewSHA1(conceptNamespace, append([]byte(n.Type+"\x00"), b...))
		return
	}
	ids := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		c.ComputeUUIDs()
		ids = append(ids, c.UUID.String())
	}
	sort.Strings(ids)
	data := n.Type + "\x00" + n.Name + "\x00" + strings.Join(ids, ",")
	n.UUID = uuid.NewSHA1(conceptNamespace, []byte(data))
}

// NewTree builds the concept tree of u.
// Datasets are visited in declaration order, assets in name order.
func NewTree(u *Universe) (*Node, error) {
	if u == nil {
		return nil, errors.New("nil universe")
	}
	root := &Node{Type: ConceptUniverse, Name: u.Name, Object: u}
	for i := range u.Users {
		root.add(ConceptUser, u.Users[i].UnixName, u.Users[i])
	}
	for i := range u.Groups {
		root.add(ConceptUserGroup, u.Groups[i].Name, u.Groups[i])
	}
	for i := range u.RoleBindings {
		root.add(ConceptRoleBinding, u.RoleBindings[i].Name, u.RoleBindings[i])
	}
	root.add(ConceptEndpointConfig, "", u.Endpoints)
	for _, d := range u.DataSets {
		dn := root.add(ConceptDataSet, d.Name, d)
		for _, t := range d.DatumTemplates {
			tn := dn.add(ConceptDatumTemplate, t.Name, t)
			for _, a := range t.Attributes {
				tn.add(ConceptAttribute, a.Name, a)
			}
		}
		for _, name := range d.AssetNames() {
			a := d.Assets[name]
			an := dn.add(a.TypeOrDefault(), a.Name, a)
			addStorageSetup(an, a.Setup)
		}
	}
	return root, nil
}

func addStorageSetup(parent *Node, s StorageSetup) {
	sn := parent.add(s.Type, "", s)
	if s.Remote != nil {
		addStorage(sn, *s.Remote)
	}
	for _, l := range s.Local {
		addStorage(sn, l)
	}
	if s.TmpEncoding != nil {
		addEncoding(sn, *s.TmpEncoding)
	}
}

func addStorage(parent *Node, s Storage) {
	sn := parent.add(s.Type, "", s)
	sn.add(s.Location.Type, "", s.Location)
	if s.Encoding != nil {
		addEncoding(sn, *s.Encoding)
	}
	if s.Layout != nil {
		sn.add(ConceptLayout, "", *s.Layout)
	}
}

func addEncoding(parent *Node, e Encoding) {
	en := parent.add(e.Type, "", e)
	if e.Compression != nil {
		en.add(ConceptCompression, "", *e.Compression)
	}
	if e.Header != nil {
		en.add(ConceptHeader, "", *e.Header)
	}
}
