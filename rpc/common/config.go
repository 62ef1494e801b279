package common

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lni/dragonboat/v4/config"
)

// --------------------------------------------------------------------------
// Dragonboat config conversion (used when serving dstore shards)
// --------------------------------------------------------------------------

// Election and heartbeat timing are expressed as multiples of the
// configured RTT, following the values recommended in the RAFT paper.
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig derives the raft shard config for one shard id
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,
		HeartbeatRTT:       heartbeatRTTFactor,
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig derives the NodeHost config shared by all raft shards
// on this node
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServerShardType string

const (
	ShardTypeLocalStore  ServerShardType = "local counter store"
	ShardTypeRemoteStore ServerShardType = "remote counter store"
	ShardTypeSQLStore    ServerShardType = "sql counter store"
)

type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type selects the store backend for the shard
	Type ServerShardType
	// DSN is the database path for sql shards (unused for other types)
	DSN string
}

// ServerConfig holds all configuration parameters for the server and the RAFT cluster.
type ServerConfig struct {
	// the shards served by this node
	Shards []ServerShard

	// Dragenboat parameters
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string

	// remote counter store parameters
	TimeoutSecond int64

	// RPC endpoint (interpreted by the selected transport)
	Endpoint string

	// Prometheus metrics endpoint (empty disables the metrics listener)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// HasRemoteShard checks if the configuration contains any remote shards
func (c *ServerConfig) HasRemoteShard() bool {
	for _, shard := range c.Shards {
		if shard.Type == ShardTypeRemoteStore {
			return true
		}
	}
	return false
}

// report is a helper for the human-readable config dumps printed at startup
type report struct {
	sb strings.Builder
}

func (r *report) section(title string) {
	r.sb.WriteString("\n" + strings.ToUpper(title) + "\n")
}

func (r *report) field(name, format string, args ...interface{}) {
	r.sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, fmt.Sprintf(format, args...)))
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var r report

	r.section("RPC Server")
	r.field("Endpoint", "%s", c.Endpoint)
	r.field("Timeout", "%d sec", c.TimeoutSecond)
	if c.MetricsEndpoint != "" {
		r.field("Metrics Endpoint", "%s", c.MetricsEndpoint)
	}

	r.section("Logging")
	r.field("Log Level", "%s", c.LogLevel)

	r.section("Shards")
	for _, shard := range c.Shards {
		desc := string(shard.Type)
		if shard.DSN != "" {
			desc += " (" + shard.DSN + ")"
		}
		r.field(strconv.FormatUint(shard.ShardID, 10), "%s", desc)
	}

	// raft details only matter when a dstore shard is served
	if c.HasRemoteShard() {
		r.section("Node Identity")
		r.field("RAFT Address", "%s", c.ClusterMembers[c.ReplicaID])
		r.field("Node ID", "%d", c.ReplicaID)

		r.section("RAFT Parameters")
		r.field("Round Trip Time (ms)", "%d ms", c.RTTMillisecond)
		r.field("Election RTT (ms)", "%d", c.RTTMillisecond*electionRTTFactor)
		r.field("Heartbeat RTT (ms)", "%d", c.RTTMillisecond*heartbeatRTTFactor)
		r.field("Check Quorum", "%t", true)
		r.field("Snapshot Entries", "%d", c.SnapshotEntries)
		r.field("Compaction Overhead", "%d", c.CompactionOverhead)
		r.field("Timeout", "%d sec", c.TimeoutSecond)

		r.section("Storage")
		r.field("Data Directory", "%s", c.DataDir)

		r.section("Cluster")
		r.sb.WriteString("  Initial Cluster Members:\n")

		var keys []uint64
		for k := range c.ClusterMembers {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			r.sb.WriteString(fmt.Sprintf("    Node %d: %s\n", k, c.ClusterMembers[k]))
		}
	}
	return r.sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var r report

	r.section("Client Configuration")
	r.field("Timeout", "%d sec", c.TimeoutSecond)
	r.field("Retry Count", "%d", c.RetryCount)

	connsPerEP := c.ConnectionsPerEndpoint
	if connsPerEP < 1 {
		connsPerEP = 1
	}
	r.field("Connections Per Endpoint", "%d", connsPerEP)

	r.section("Endpoints")
	for i, endpoint := range c.Endpoints {
		r.field(strconv.Itoa(i), "%s", endpoint)
	}

	return r.sb.String()
}
