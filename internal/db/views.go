package db

// Порядок важен: lst_* используются в последующих представлениях.
var views = []struct {
	name string
	sql  string
}{
	{"farm_with_all_devices", `
CREATE OR REPLACE VIEW farm_with_all_devices AS
SELECT f.farm_id, f.farm_key, f.farmer_id, s.section_id,
       sd.section_device_id, sd.device_name AS section_device_name
FROM section_devices sd
JOIN section s ON s.section_id = sd.section_id
JOIN farm f ON f.farm_id = s.farm_id`},

	{"farm_with_farm_devices", `
CREATE OR REPLACE VIEW farm_with_farm_devices AS
SELECT f.farm_id, f.farm_key, f.farmer_id,
       fd.farm_device_id, fd.device_name AS farm_device_name
FROM farm_devices fd
JOIN farm f ON f.farm_id = fd.farm_id`},

	{"lst_valve_data", `
CREATE OR REPLACE VIEW lst_valve_data AS
SELECT DISTINCT ON (section_device_id)
       valve_data_id, section_device_id, valve_mode, valve_status, manual_off_timer, timestamp
FROM valve_data
ORDER BY section_device_id, timestamp DESC, valve_data_id DESC`},

	{"lst_moisture_data", `
CREATE OR REPLACE VIEW lst_moisture_data AS
SELECT DISTINCT ON (section_device_id)
       moisture_data_id, section_device_id, moisture_value, timestamp
FROM moisture_data
ORDER BY section_device_id, timestamp DESC, moisture_data_id DESC`},

	// клапаны без событий тоже попадают сюда (mode/status = NULL)
	{"lst_valve_avg_moisture", `
CREATE OR REPLACE VIEW lst_valve_avg_moisture AS
SELECT f.farm_id, f.farm_key, f.farmer_id,
       f.auto_on_threshold, f.auto_off_threshold,
       s.section_id, s.section_name, sd.section_device_id,
       lv.valve_mode, lv.valve_status, lv.timestamp AS valve_timestamp, lv.manual_off_timer,
       (SELECT AVG(lm.moisture_value)
          FROM lst_moisture_data lm
          JOIN section_devices msd ON msd.section_device_id = lm.section_device_id
         WHERE msd.section_id = s.section_id AND msd.device_name = 'moisture') AS avg_section_moisture
FROM section_devices sd
JOIN section s ON s.section_id = sd.section_id
JOIN farm f ON f.farm_id = s.farm_id
LEFT JOIN lst_valve_data lv ON lv.section_device_id = sd.section_device_id
WHERE sd.device_name = 'valve'`},

	{"lst_field_data", `
CREATE OR REPLACE VIEW lst_field_data AS
SELECT DISTINCT ON (fd.farm_device_id)
       fd.farm_id, fd.farm_device_id,
       d.nitrogen, d.phosphorus, d.potassium, d.temperature, d.humidity, d.timestamp,
       (SELECT AVG(lm.moisture_value)
          FROM lst_moisture_data lm
          JOIN section_devices msd ON msd.section_device_id = lm.section_device_id
          JOIN section ms ON ms.section_id = msd.section_id
         WHERE ms.farm_id = fd.farm_id AND msd.device_name = 'moisture') AS avg_moisture
FROM field_data d
JOIN farm_devices fd ON fd.farm_device_id = d.farm_device_id
ORDER BY fd.farm_device_id, d.timestamp DESC, d.field_data_id DESC`},

	{"farmer_farm_with_sections", `
CREATE OR REPLACE VIEW farmer_farm_with_sections AS
SELECT fr.admin_id, fr.farmer_id, f.farm_id, s.section_id, s.section_name, s.creation_date,
       (SELECT COUNT(*) FROM section_devices sd WHERE sd.section_id = s.section_id) AS total_section_devices
FROM section s
JOIN farm f ON f.farm_id = s.farm_id
JOIN farmer fr ON fr.farmer_id = f.farmer_id`},

	{"farmer_farm_with_all_section_devices", `
CREATE OR REPLACE VIEW farmer_farm_with_all_section_devices AS
SELECT fr.admin_id, fr.farmer_id, f.farm_id, s.section_id,
       sd.section_device_id, sd.device_name, sd.device_location, sd.installation_date
FROM section_devices sd
JOIN section s ON s.section_id = sd.section_id
JOIN farm f ON f.farm_id = s.farm_id
JOIN farmer fr ON fr.farmer_id = f.farmer_id`},
}
