package driftid

import (
	"crypto/rand"
	"math"
	"strconv"
	"sync"
	"time"
)

// DriftID Format:
// Timestamp (41-bits)
// Node ID (11-bits)
// Increment (11-bits)
//
// Ids are minted on the client before the first write, so the same id is
// used for the optimistic record and the eventually-pushed echo. The node
// id is random per process; collisions are accepted as negligible.

type DriftID = int64

const DriftEpoch int64 = 1672531200000 // 2023-01-01 12am GMT

const (
	TimestampBits = 41
	TimestampMask = (1 << TimestampBits) - 1

	NodeIdBits = 11
	NodeIdMask = (1 << NodeIdBits) - 1

	IncrementBits = 11
)

var NodeId int64

var idIncrementLock = sync.Mutex{}
var idIncrementTs int64 = 0
var idIncrement int64 = 0

func init() {
	var b [2]byte
	rand.Read(b[:])
	NodeId = (int64(b[0])<<8 | int64(b[1])) & NodeIdMask
}

func GenId() int64 {
	// Get timestamp
	ts := time.Now().UnixMilli()

	// Get increment
	idIncrementLock.Lock()
	defer idIncrementLock.Unlock()
	if idIncrementTs != ts {
		idIncrementTs = ts
		idIncrement = 0
	} else if idIncrement >= int64(math.Pow(2, IncrementBits))-1 {
		for time.Now().UnixMilli() == ts {
			continue
		}
		return GenId()
	} else {
		idIncrement += 1
	}

	// Construct ID
	id := (ts - DriftEpoch) << (NodeIdBits + IncrementBits)
	id |= NodeId << IncrementBits
	id |= idIncrement

	return id
}

// GenToken returns a freshly minted id in the decimal string form used for
// record ids.
func GenToken() string {
	return strconv.FormatInt(GenId(), 10)
}

func Extract(id int64) struct {
	Timestamp int64
	NodeId    int64
	Increment int64
} {
	return struct {
		Timestamp int64
		NodeId    int64
		Increment int64
	}{
		Timestamp: ((id >> (NodeIdBits + IncrementBits)) & TimestampMask) + DriftEpoch,
		NodeId:    (id >> IncrementBits) & NodeIdMask,
		Increment: id & ((1 << IncrementBits) - 1),
	}
}
