package power

// Power supply attributes, named as in the Linux power_supply class.
// Voltages are µV, currents µA and temperatures tenths of °C.
const (
	AttrPresent              = "present"
	AttrOnline               = "online"
	AttrVoltageNow           = "voltage_now"
	AttrVoltageOCV           = "voltage_ocv"
	AttrCurrentNow           = "current_now"
	AttrTemp                 = "temp"
	AttrCapacity             = "capacity"
	AttrStatus               = "status"
	AttrChargeType           = "charge_type"
	AttrUSBType              = "usb_type"
	AttrChargeBehaviour      = "charge_behaviour"
	AttrChargeVoltageMax     = "constant_charge_voltage_max"
	AttrChargeVoltageMaxDsgn = "constant_charge_voltage_max_design"

	// Not part of the class ABI. Boards that support them expose them
	// under the battery supply.
	AttrRecharging     = "recharging"
	AttrFuelGaugeReset = "fg_reset"
)

// Values of charge_behaviour.
const (
	BehaviourAuto    = "auto"
	BehaviourInhibit = "inhibit-charge"
)

// Default supply names.
const (
	DefaultRoot           = "/sys/class/power_supply"
	DefaultBatterySupply  = "battery"
	DefaultChargerSupply  = "charger"
	defaultChargerVoltage = 5000
)
