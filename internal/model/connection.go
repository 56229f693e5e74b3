package model

// ConnectionID uniquely identifies a live client connection
type ConnectionID string

// Role is the functional class of a connection, determining its default
// broadcast group membership.
type Role string

const (
	RolePlayer    Role = "player"
	RoleDashboard Role = "dashboard"
	RoleValidator Role = "validator"
)

// ParseRole maps a clientType query value to a Role. Unknown or empty values
// default to player, mirroring the connect handshake's source behavior.
func ParseRole(clientType string) Role {
	switch clientType {
	case string(RoleDashboard):
		return RoleDashboard
	case string(RoleValidator):
		return RoleValidator
	default:
		return RolePlayer
	}
}

// GroupName identifies a broadcast fan-out target
type GroupName string

// Standard groups. Per-player groups are derived with PlayerGroup.
const (
	GroupPlayers    GroupName = "Players"
	GroupDashboard  GroupName = "WebDashboard"
	GroupValidators GroupName = "Validators"
)

// PlayerGroup returns the direct-delivery group for a single player
func PlayerGroup(id PlayerID) GroupName {
	return GroupName("Player_" + string(id))
}
