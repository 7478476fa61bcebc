package native

import (
	"net"
	"sync"

	"github.com/freemorger/voxvm/register"
	"github.com/freemorger/voxvm/vm"
)

// Built-in network native call codes.
const (
	CodeNetBind    uint16 = 0x20
	CodeNetClose   uint16 = 0x21
	CodeNetAccept  uint16 = 0x22
	CodeNetWrite   uint16 = 0x23
	CodeNetRead    uint16 = 0x24
	CodeNetGetAddr uint16 = 0x25
)

// netConn is one tracked connection: either a listener awaiting accept,
// or an accepted/connected stream ready for read/write.
type netConn struct {
	listener net.Listener
	stream   net.Conn
}

// NetController is the VM's TCP connection table, grounded on the
// original's NetController/connections vector (simplified to TCP only;
// the original's UDP branch has no corresponding spec operation).
type NetController struct {
	mu    sync.Mutex
	conns []*netConn
}

// NewNetController returns an empty controller.
func NewNetController() *NetController {
	return &NetController{}
}

func (nc *NetController) add(c *netConn) uint64 {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.conns = append(nc.conns, c)
	return uint64(len(nc.conns) - 1)
}

func (nc *NetController) get(idx uint64) (*netConn, bool) {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	if idx >= uint64(len(nc.conns)) || nc.conns[idx] == nil {
		return nil, false
	}
	return nc.conns[idx], true
}

// NetBind reads a heap-resident "host:port" address (r1 ptr, r2 count),
// opens a TCP listener on it, and returns the connection handle in r0.
func NetBind(nc *NetController) vm.NativeFunc {
	return func(v *vm.VM) error {
		ptr := v.Registers[1].Uint()
		count := v.Registers[2].Uint()
		raw, err := v.Heap.Read(ptr, count)
		if err != nil {
			v.Exceptions.Raise(vm.ExcHeapReadFault)
			return nil
		}
		addr, ok := utf16BEToString(raw)
		if !ok {
			v.Exceptions.Raise(vm.ExcHeapSegmFault)
			return nil
		}
		l, err := net.Listen("tcp", addr)
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		v.Registers[0] = register.FromUint(nc.add(&netConn{listener: l}))
		return nil
	}
}

// NetClose closes the connection handle in r1.
func NetClose(nc *NetController) vm.NativeFunc {
	return func(v *vm.VM) error {
		idx := v.Registers[1].Uint()
		c, ok := nc.get(idx)
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		nc.mu.Lock()
		nc.conns[idx] = nil
		nc.mu.Unlock()
		if c.stream != nil {
			return c.stream.Close()
		}
		if c.listener != nil {
			return c.listener.Close()
		}
		return nil
	}
}

// NetAccept blocks on the listener handle in r1 and returns a new stream
// connection handle in r0.
func NetAccept(nc *NetController) vm.NativeFunc {
	return func(v *vm.VM) error {
		c, ok := nc.get(v.Registers[1].Uint())
		if !ok || c.listener == nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		conn, err := c.listener.Accept()
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		v.Registers[0] = register.FromUint(nc.add(&netConn{stream: conn}))
		return nil
	}
}

// NetWrite writes r3 heap bytes at r2 to the stream handle r1.
func NetWrite(nc *NetController) vm.NativeFunc {
	return func(v *vm.VM) error {
		c, ok := nc.get(v.Registers[1].Uint())
		if !ok || c.stream == nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		data, err := v.Heap.Read(v.Registers[2].Uint(), v.Registers[3].Uint())
		if err != nil {
			v.Exceptions.Raise(vm.ExcHeapReadFault)
			return nil
		}
		n, err := c.stream.Write(data)
		if err != nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		v.Registers[0] = register.FromUint(uint64(n))
		return nil
	}
}

// NetRead reads up to r3 bytes from the stream handle r1 into the heap at r2.
func NetRead(nc *NetController) vm.NativeFunc {
	return func(v *vm.VM) error {
		c, ok := nc.get(v.Registers[1].Uint())
		if !ok || c.stream == nil {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		buf := make([]byte, v.Registers[3].Uint())
		n, err := c.stream.Read(buf)
		if err != nil && n == 0 {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		if err := v.Heap.Write(v.Registers[2].Uint(), buf[:n]); err != nil {
			v.Exceptions.Raise(vm.ExcHeapWriteFault)
			return nil
		}
		v.Registers[0] = register.FromUint(uint64(n))
		return nil
	}
}

// NetGetAddr writes the handle r1's local address as a UTF-16BE string
// into the heap at r2, up to r3 bytes, returning the byte count in r0.
func NetGetAddr(nc *NetController) vm.NativeFunc {
	return func(v *vm.VM) error {
		c, ok := nc.get(v.Registers[1].Uint())
		if !ok {
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}
		var addr string
		switch {
		case c.stream != nil:
			addr = c.stream.LocalAddr().String()
		case c.listener != nil:
			addr = c.listener.Addr().String()
		default:
			v.Exceptions.Raise(vm.ExcNativeFault)
			return nil
		}

		units := []uint16{}
		for _, r := range addr {
			units = append(units, uint16(r))
		}
		bytes := make([]byte, 2*len(units))
		for i, u := range units {
			bytes[2*i] = byte(u >> 8)
			bytes[2*i+1] = byte(u)
		}
		maxC := clampUint(v.Registers[3].Uint(), 0, uint64(len(bytes)))
		if err := v.Heap.Write(v.Registers[2].Uint(), bytes[:maxC]); err != nil {
			v.Exceptions.Raise(vm.ExcHeapWriteFault)
			return nil
		}
		v.Registers[0] = register.FromUint(uint64(len(bytes)))
		return nil
	}
}
