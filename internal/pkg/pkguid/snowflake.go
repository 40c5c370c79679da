package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// maxNodeID is the largest node id representable in the default 10 node bits.
const maxNodeID int64 = 1<<10 - 1

// Snowflake generates time-ordered numeric IDs. Upload records use them so
// that sorting by id matches insertion order within one node.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & maxNodeID, nil
}

// NewSnowflake constructs a generator for the given node. A negative node
// picks a random one, which is fine for a single instance.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 {
		var err error
		if nodeID, err = generateRandomNodeID(); err != nil {
			return nil, err
		}
	}

	if nodeID > maxNodeID {
		return nil, fmt.Errorf("snowflake node %d out of range 0..%d", nodeID, maxNodeID)
	}

	snowflake.Epoch = 1767225600000 // Thu Jan 01 2026 00:00:00.000 UTC

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
