package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapacity(t *testing.T) {
	c, err := ParseCapacity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, Capacity(3), c)

	for _, bad := range []string{"", "0", "-1", "two", "1.5"} {
		_, err := ParseCapacity(bad)
		assert.Error(t, err, bad)
	}
}

func TestCapacityUnmarshal(t *testing.T) {
	var body struct {
		Capacity Capacity `json:"capacity"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"capacity": 2}`), &body))
	assert.Equal(t, Capacity(2), body.Capacity)
	require.NoError(t, json.Unmarshal([]byte(`{"capacity": "4"}`), &body))
	assert.Equal(t, Capacity(4), body.Capacity)

	assert.Error(t, json.Unmarshal([]byte(`{"capacity": "four"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"capacity": true}`), &body))

	// decoding accepts zero; validation happens separately
	require.NoError(t, json.Unmarshal([]byte(`{"capacity": 0}`), &body))
	assert.Error(t, body.Capacity.Validate())
}

func TestRoomDerivedFields(t *testing.T) {
	r := Room{ID: 1, Number: "A-1", Capacity: 2, OccupantIDs: []uint64{5}}
	assert.True(t, r.Occupied())
	assert.False(t, r.Full())
	assert.Equal(t, 1, r.Available())
	assert.True(t, r.HasOccupant(5))
	assert.False(t, r.HasOccupant(6))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"roomNumber":"A-1","capacity":2,"occupantStudentIds":[5],"occupied":true,"available":1}`, string(data))

	empty, err := json.Marshal(Room{ID: 2, Number: "B", Capacity: 1})
	require.NoError(t, err)
	assert.Contains(t, string(empty), `"occupantStudentIds":[]`)
	assert.Contains(t, string(empty), `"occupied":false`)
}

func TestRoomFilter(t *testing.T) {
	full := Room{Number: "A-101", Capacity: 1, OccupantIDs: []uint64{1}}
	free := Room{Number: "B-7", Capacity: 3}

	assert.True(t, RoomFilter{}.Match(full))
	assert.False(t, RoomFilter{OnlyAvailable: true}.Match(full))
	assert.True(t, RoomFilter{OnlyAvailable: true}.Match(free))
	assert.True(t, RoomFilter{Query: "a-10"}.Match(full))
	assert.True(t, RoomFilter{Query: "3"}.Match(free), "matches capacity")
	assert.False(t, RoomFilter{Query: "zz"}.Match(free))
}

func TestStudentFilter(t *testing.T) {
	num := "A-1"
	id := uint64(1)
	housed := Student{Name: "Ann Lee", Email: "ann@example.com", RoomID: &id, RoomNumber: &num}
	homeless := Student{Name: "Bob", Email: "bob@example.com"}

	assert.True(t, StudentFilter{Query: "LEE"}.Match(housed))
	assert.True(t, StudentFilter{Query: "a-1"}.Match(housed))
	assert.False(t, StudentFilter{Unassigned: true}.Match(housed))
	assert.True(t, StudentFilter{Unassigned: true, Query: "bob@"}.Match(homeless))
	assert.False(t, StudentFilter{Query: "a-1"}.Match(homeless))
}
