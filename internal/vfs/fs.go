package vfs

import (
	"context"
	"fmt"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"mtimefs/internal/common"
)

// Node is a read-only loopback node. Everything is forwarded to the host tree
// by the embedded fs.LoopbackNode; attribute replies are passed through the
// Resolver first so indexed paths report the override time.
type Node struct {
	fs.LoopbackNode
	resolver Resolver
}

var _ = (fs.NodeGetattrer)((*Node)(nil))
var _ = (fs.NodeLookuper)((*Node)(nil))
var _ = (fs.NodeOpener)((*Node)(nil))
var _ = (fs.NodeCreater)((*Node)(nil))
var _ = (fs.NodeSetattrer)((*Node)(nil))
var _ = (fs.NodeMkdirer)((*Node)(nil))
var _ = (fs.NodeMknoder)((*Node)(nil))
var _ = (fs.NodeUnlinker)((*Node)(nil))
var _ = (fs.NodeRmdirer)((*Node)(nil))
var _ = (fs.NodeRenamer)((*Node)(nil))
var _ = (fs.NodeSymlinker)((*Node)(nil))
var _ = (fs.NodeLinker)((*Node)(nil))
var _ = (fs.NodeSetxattrer)((*Node)(nil))
var _ = (fs.NodeRemovexattrer)((*Node)(nil))

// NewRoot returns the root node serving rootPath. The resolver is shared by
// every node of the tree; it may be nil for a plain passthrough.
func NewRoot(rootPath string, resolver Resolver) (*Node, error) {
	var st syscall.Stat_t
	if err := syscall.Stat(rootPath, &st); err != nil {
		return nil, fmt.Errorf("stating root %s: %w", rootPath, err)
	}
	if st.Mode&syscall.S_IFMT != syscall.S_IFDIR {
		return nil, fmt.Errorf("root %s: %w", rootPath, ENOTDIR)
	}

	rootData := &fs.LoopbackRoot{
		Path: rootPath,
		Dev:  uint64(st.Dev),
	}
	rootData.NewNode = func(rootData *fs.LoopbackRoot, parent *fs.Inode, name string, st *syscall.Stat_t) fs.InodeEmbedder {
		return &Node{
			LoopbackNode: fs.LoopbackNode{RootData: rootData},
			resolver:     resolver,
		}
	}

	root := &Node{
		LoopbackNode: fs.LoopbackNode{RootData: rootData},
		resolver:     resolver,
	}
	rootData.RootNode = root
	return root, nil
}

// indexPath is the node's path below the served root ("" for the root
// itself). Resolve maps it to the database form.
func (n *Node) indexPath() string {
	return n.Path(n.Root())
}

func (n *Node) childIndexPath(name string) string {
	return common.JoinPath(n.Path(n.Root()), name)
}

// Getattr covers both path and handle based attribute queries.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	if errno := n.LoopbackNode.Getattr(ctx, f, out); errno != 0 {
		return errno
	}
	overrideAttr(n.resolver, n.indexPath(), &out.Attr)
	return 0
}

// Lookup replies carry attributes too, so they get the same treatment as Getattr.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	child, errno := n.LoopbackNode.Lookup(ctx, name, out)
	if errno != 0 {
		return nil, errno
	}
	overrideAttr(n.resolver, n.childIndexPath(name), &out.Attr)
	return child, 0
}

func isWrite(flags uint32) bool {
	return flags&writeFlags != 0
}

func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if isWrite(flags) {
		return nil, 0, refuseWrite(fmt.Sprintf("Open flags=%#x", flags), n.indexPath())
	}
	return n.LoopbackNode.Open(ctx, flags)
}

// The tree is served read-only. The mount also carries the "ro" option; these
// keep the node read-only when the kernel does not enforce it.

func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	return nil, nil, 0, refuseWrite("Create", n.childIndexPath(name))
}

func (n *Node) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	return refuseWrite("Setattr", n.indexPath())
}

func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, refuseWrite("Mkdir", n.childIndexPath(name))
}

func (n *Node) Mknod(ctx context.Context, name string, mode, rdev uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, refuseWrite("Mknod", n.childIndexPath(name))
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	return refuseWrite("Unlink", n.childIndexPath(name))
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return refuseWrite("Rmdir", n.childIndexPath(name))
}

func (n *Node) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	return refuseWrite("Rename", n.childIndexPath(name))
}

func (n *Node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, refuseWrite("Symlink", n.childIndexPath(name))
}

func (n *Node) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, refuseWrite("Link", n.childIndexPath(name))
}

func (n *Node) Setxattr(ctx context.Context, attr string, data []byte, flags uint32) syscall.Errno {
	return refuseWrite("Setxattr", n.indexPath())
}

func (n *Node) Removexattr(ctx context.Context, attr string) syscall.Errno {
	return refuseWrite("Removexattr", n.indexPath())
}
