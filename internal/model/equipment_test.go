package model

import "testing"

func TestDeliveryStatus_Valid(t *testing.T) {
	if !DeliveryStatusDelivered.Valid() || !DeliveryStatusInProgress.Valid() {
		t.Error("Delivered / InProgress 应为合法状态")
	}
	if DeliveryStatus("Lost").Valid() {
		t.Error("Lost 不应为合法状态")
	}
}

func TestBL_Valid(t *testing.T) {
	if !BLYes.Valid() || !BLNo.Valid() {
		t.Error("yes / no 应为合法 BL")
	}
	if BL("maybe").Valid() {
		t.Error("maybe 不应为合法 BL")
	}
}
